package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siegeai/siegeingest/ingest"
	"github.com/siegeai/siegeingest/report"
)

func (a *app) ingestCmd() *cobra.Command {
	var dir, out, table string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Process a directory of JSON files into a flat CSV table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.SourceDir
			}
			if dir == "" {
				return fmt.Errorf("no source directory; pass --dir or set sourceDir")
			}
			if out == "" {
				out = a.cfg.Output
			}
			if table == "" {
				table = a.cfg.Table
			}

			src, err := ingest.NewDirectorySource(dir, a.cfg.Recursive)
			if err != nil {
				return err
			}
			a.log.Info("discovered files", "dir", dir, "count", src.Len())

			sink, err := openCSVSink(out)
			if err != nil {
				return err
			}
			defer sink.Close()

			p := a.pipeline(table)
			res, err := p.Run(cmd.Context(), src, sink)
			if err != nil {
				return err
			}

			return report.WriteJSON(os.Stdout, report.ForRun(res, table))
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory of JSON files to ingest")
	cmd.Flags().StringVar(&out, "out", "", "CSV output path, or - for stdout")
	cmd.Flags().StringVar(&table, "table", "", "logical table name")
	return cmd
}

func (a *app) inspectCmd() *cobra.Command {
	var dir, name string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Consolidate a directory and print the schema analysis without writing rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.SourceDir
			}
			if dir == "" {
				return fmt.Errorf("no source directory; pass --dir or set sourceDir")
			}

			src, err := ingest.NewDirectorySource(dir, a.cfg.Recursive)
			if err != nil {
				return err
			}

			sink := &ingest.MemorySink{}
			p := a.pipeline(a.cfg.Table)
			res, err := p.Run(cmd.Context(), src, sink)
			if err != nil {
				return err
			}

			if err := report.WriteJSON(os.Stdout, report.ForSchema(name, res.Schema)); err != nil {
				return err
			}
			return report.WriteJSON(os.Stdout, res.Report)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory of JSON files to inspect")
	cmd.Flags().StringVar(&name, "name", "corpus", "schema name used in the report")
	return cmd
}

func (a *app) pipeline(table string) *ingest.Pipeline {
	return &ingest.Pipeline{
		MaxDepth:   a.cfg.MaxDepth,
		MaxSamples: a.cfg.MaxSamples,
		Tolerance:  a.cfg.Tolerance,
		Workers:    a.cfg.Workers,
		BatchSize:  a.cfg.BatchSize,
		Table:      table,
		Log:        a.log,
	}
}

func openCSVSink(out string) (*ingest.CSVSink, error) {
	if out == "-" {
		return ingest.NewCSVSink(os.Stdout), nil
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return ingest.NewCSVSink(f), nil
}
