// Package cli wires config, pipeline, reports and the HTTP service into
// the siegeingest command.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/siegeai/siegeingest/config"
)

type app struct {
	cfgPath string
	cfg     config.Config
	log     *slog.Logger
}

// Execute runs the root command.
func Execute() error {
	a := &app{}

	root := &cobra.Command{
		Use:           "siegeingest",
		Short:         "Infer, consolidate and flatten schemas from JSON corpora",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log, err = setupLogging(cfg.LogLevel)
			return err
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(a.ingestCmd(), a.inspectCmd(), a.serveCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		return err
	}
	return nil
}

func setupLogging(level string) (*slog.Logger, error) {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(level))
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	l := slog.New(h)
	slog.SetDefault(l)
	return l, err
}
