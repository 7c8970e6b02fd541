package infer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"

	"github.com/siegeai/siegeingest/jsonschema"
)

// ErrUnclassifiable is the engine's only hard failure: a decoded value whose
// category cannot be determined. Should not occur for valid decoded JSON.
var ErrUnclassifiable = errors.New("unclassifiable value")

// Classify returns the kind of a decoded JSON value. Booleans are checked
// before numbers so a boolean can never come back as an integer. A number
// written without a fraction or exponent classifies as Integer, anything
// else numeric as Number.
func Classify(v *fastjson.Value) (jsonschema.Kind, error) {
	if v == nil {
		return jsonschema.KindNull, nil
	}
	switch v.Type() {
	case fastjson.TypeNull:
		return jsonschema.KindNull, nil
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return jsonschema.KindBoolean, nil
	case fastjson.TypeNumber:
		if _, err := v.Int64(); err == nil {
			return jsonschema.KindInteger, nil
		}
		return jsonschema.KindNumber, nil
	case fastjson.TypeString:
		return jsonschema.KindString, nil
	case fastjson.TypeArray:
		return jsonschema.KindArray, nil
	case fastjson.TypeObject:
		return jsonschema.KindObject, nil
	}
	return 0, fmt.Errorf("%w: fastjson type %v", ErrUnclassifiable, v.Type())
}

// detectPattern looks for well-known string shapes. Advisory only; nothing
// downstream ever rejects a value over a pattern.
func detectPattern(s string) string {
	if looksLikeUUID(s) {
		return "uuid"
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return "url"
	}
	if looksLikeEmail(s) {
		return "email"
	}
	return ""
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return false
	}
	return strings.Contains(s[at:], ".")
}

func looksLikeUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
