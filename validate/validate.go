// Package validate checks decoded documents against schemas. Failures are
// data, not errors: callers get a Result and decide severity themselves.
package validate

import (
	"fmt"
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/siegeai/siegeingest/infer"
	"github.com/siegeai/siegeingest/jsonschema"
)

// maxArrayChecks bounds per-array element validation. Large arrays are
// sampled best-effort, not checked exhaustively.
const maxArrayChecks = 100

// Violation codes.
const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeUnknownKey  = "unknown_key"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
)

// Violation is one failed check: where, what rule, and a human-readable
// detail.
type Violation struct {
	Path   string `json:"path"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Result is the outcome of validating one document.
type Result struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

// Validate checks v against s. It never fails on shape: unexpected
// structure becomes violations, and a nil schema accepts everything.
func Validate(v *fastjson.Value, s jsonschema.Schema) Result {
	viols := make([]Violation, 0)
	validateValue(v, s, "", &viols)
	return Result{Valid: len(viols) == 0, Violations: viols}
}

func validateValue(v *fastjson.Value, s jsonschema.Schema, path string, out *[]Violation) {
	if s == nil {
		return
	}

	// Mixed admits every kind by construction.
	if s.Kind() == jsonschema.KindMixed {
		return
	}

	kind, err := infer.Classify(v)
	if err != nil {
		*out = append(*out, Violation{Path: path, Code: CodeInvalidType, Detail: err.Error()})
		return
	}

	if kind == jsonschema.KindNull {
		if !s.Nullable() {
			*out = append(*out, Violation{
				Path:   path,
				Code:   CodeInvalidType,
				Detail: "null where " + s.Kind().String() + " declared",
			})
		}
		return
	}

	switch s.Kind() {
	case jsonschema.KindObject:
		if kind != jsonschema.KindObject {
			*out = append(*out, mismatch(path, s.Kind(), kind))
			return
		}
		validateObject(v, s.AsObject(), path, out)
	case jsonschema.KindArray:
		if kind != jsonschema.KindArray {
			*out = append(*out, mismatch(path, s.Kind(), kind))
			return
		}
		validateArray(v, s.AsArray(), path, out)
	default:
		if !scalarKindOK(s.Kind(), kind) {
			*out = append(*out, mismatch(path, s.Kind(), kind))
		}
	}
}

// scalarKindOK: integers are acceptable wherever numbers are declared; the
// reverse is not.
func scalarKindOK(declared, observed jsonschema.Kind) bool {
	if declared == observed {
		return true
	}
	return declared == jsonschema.KindNumber && observed == jsonschema.KindInteger
}

func validateObject(v *fastjson.Value, s *jsonschema.ObjectSchema, path string, out *[]Violation) {
	o, err := v.Object()
	if err != nil {
		*out = append(*out, Violation{Path: path, Code: CodeInvalidType, Detail: err.Error()})
		return
	}

	for _, f := range s.Fields {
		if f.Required && v.Get(f.Key) == nil {
			*out = append(*out, Violation{
				Path:   joinPath(path, f.Key),
				Code:   CodeRequired,
				Detail: "required property missing",
			})
		}
	}

	o.Visit(func(key []byte, cv *fastjson.Value) {
		f := s.Field(string(key))
		if f == nil {
			if !s.AllowAdditional {
				*out = append(*out, Violation{
					Path:   joinPath(path, string(key)),
					Code:   CodeUnknownKey,
					Detail: "property not declared by schema",
				})
			}
			return
		}
		validateValue(cv, f.Value, joinPath(path, string(key)), out)
	})
}

func validateArray(v *fastjson.Value, s *jsonschema.ArraySchema, path string, out *[]Violation) {
	vs, err := v.Array()
	if err != nil {
		*out = append(*out, Violation{Path: path, Code: CodeInvalidType, Detail: err.Error()})
		return
	}

	if s.MinItems > 0 && len(vs) < s.MinItems {
		*out = append(*out, Violation{
			Path:   path,
			Code:   CodeTooShort,
			Detail: fmt.Sprintf("%d elements, schema floor is %d", len(vs), s.MinItems),
		})
	}
	if s.MaxItems > 0 && len(vs) > s.MaxItems {
		*out = append(*out, Violation{
			Path:   path,
			Code:   CodeTooLong,
			Detail: fmt.Sprintf("%d elements, schema ceiling is %d", len(vs), s.MaxItems),
		})
	}

	if s.Item == nil {
		return
	}
	for i, e := range vs {
		if i >= maxArrayChecks {
			break
		}
		validateValue(e, s.Item, path+"["+strconv.Itoa(i)+"]", out)
	}
}

func mismatch(path string, declared, observed jsonschema.Kind) Violation {
	return Violation{
		Path:   path,
		Code:   CodeInvalidType,
		Detail: observed.String() + " where " + declared.String() + " declared",
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
