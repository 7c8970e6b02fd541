package httpapi

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/valyala/fastjson"

	"github.com/siegeai/siegeingest/consolidate"
	"github.com/siegeai/siegeingest/export"
	"github.com/siegeai/siegeingest/flatten"
	"github.com/siegeai/siegeingest/infer"
	"github.com/siegeai/siegeingest/jsonschema"
	"github.com/siegeai/siegeingest/validate"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfer infers a schema for the posted document and returns its
// OpenAPI form plus the flattened column list.
func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	v, ok := s.readValue(w, r)
	if !ok {
		return
	}
	schema, err := infer.Infer(v, s.opts.MaxSamples)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"schema":  export.OpenAPI(schema),
		"columns": flatten.Schema(schema, "", s.opts.MaxDepth),
	})
}

// handleConsolidate takes a JSON array of documents, infers each and folds
// them into one corpus schema with its consistency report.
func (s *Server) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	schemas, ok := s.readCorpus(w, r)
	if !ok {
		return
	}
	schema := consolidate.Consolidate(schemas)
	rep := consolidate.ValidateConsistency(schemas, s.opts.Tolerance)
	writeJSON(w, http.StatusOK, map[string]any{
		"schema":      export.OpenAPI(schema),
		"columns":     flatten.Schema(schema, "", s.opts.MaxDepth),
		"consistency": rep,
	})
}

// handleFlatten flattens the posted document against its own inferred
// schema and returns the flat row.
func (s *Server) handleFlatten(w http.ResponseWriter, r *http.Request) {
	v, ok := s.readValue(w, r)
	if !ok {
		return
	}
	schema, err := infer.Infer(v, s.opts.MaxSamples)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	row, err := flatten.Record(v, schema, s.opts.MaxDepth)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"row": row.Map(), "fields": row.Names()})
}

// handleLearn consolidates the posted corpus and stores the result under
// the route name for later validation.
func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	schemas, ok := s.readCorpus(w, r)
	if !ok {
		return
	}

	schema := consolidate.Consolidate(schemas)
	rep := consolidate.ValidateConsistency(schemas, s.opts.Tolerance)
	s.cache.Put(name, schema)
	s.log.Info("learned schema", "name", name, "documents", len(schemas), "score", rep.Score)

	writeJSON(w, http.StatusOK, map[string]any{
		"name":        name,
		"columns":     flatten.Schema(schema, "", s.opts.MaxDepth),
		"consistency": rep,
	})
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	schema, ok := s.cache.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown schema " + name})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    name,
		"schema":  export.OpenAPI(schema),
		"columns": flatten.Schema(schema, "", s.opts.MaxDepth),
	})
}

func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	s.cache.Invalidate(mux.Vars(r)["name"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	schema, ok := s.cache.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown schema " + name})
		return
	}
	v, okv := s.readValue(w, r)
	if !okv {
		return
	}
	writeJSON(w, http.StatusOK, validate.Validate(v, schema))
}

func (s *Server) readValue(w http.ResponseWriter, r *http.Request) (*fastjson.Value, bool) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	v, err := fastjson.ParseBytes(b)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return nil, false
	}
	return v, true
}

// readCorpus decodes a JSON array body and infers one schema per element.
func (s *Server) readCorpus(w http.ResponseWriter, r *http.Request) ([]jsonschema.Schema, bool) {
	v, ok := s.readValue(w, r)
	if !ok {
		return nil, false
	}
	docs, err := v.Array()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be a JSON array of documents"})
		return nil, false
	}

	schemas := make([]jsonschema.Schema, 0, len(docs))
	for _, d := range docs {
		schema, err := infer.Infer(d, s.opts.MaxSamples)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return nil, false
		}
		schemas = append(schemas, schema)
	}
	return schemas, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
