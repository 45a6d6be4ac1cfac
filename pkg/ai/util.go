package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// ErrMalformedJSON is returned when a model reply cannot be decoded even
// after repair.
var ErrMalformedJSON = errors.New("model reply is not valid json")

var schemaReflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

// GenerateSchema reflects the JSON schema of the type behind value, which may
// be a pointer. Definitions are inlined and unknown properties are rejected,
// as structured output endpoints require.
func GenerateSchema(value any) any {
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return schemaReflector.Reflect(reflect.New(t).Interface())
}

// UnmarshalFlexible decodes a model reply into out. Besides plain JSON it
// accepts replies wrapped in a markdown code fence, JSON encoded as a string,
// a duplicated opening brace and anything jsonrepair can fix.
func UnmarshalFlexible(input string, out any) error {
	candidate := strings.TrimSpace(input)
	if json.Unmarshal([]byte(candidate), out) == nil {
		return nil
	}

	for _, unwrap := range []func(string) string{stripCodeFence, unquote, stripDuplicateLeadingBrace} {
		next := unwrap(candidate)
		if next == candidate {
			continue
		}
		candidate = next
		if json.Unmarshal([]byte(candidate), out) == nil {
			return nil
		}
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return fmt.Errorf("%w: repair failed: %v (input: %s)", ErrMalformedJSON, err, candidate)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("%w: %v (repaired: %s)", ErrMalformedJSON, err, repaired)
	}
	return nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

// unquote decodes JSON that was returned as a string literal.
func unquote(s string) string {
	var inner string
	if err := json.Unmarshal([]byte(s), &inner); err != nil {
		return s
	}
	return strings.TrimSpace(inner)
}

func stripDuplicateLeadingBrace(s string) string {
	if !strings.HasPrefix(s, "{") {
		return s
	}
	rest := strings.TrimSpace(s[1:])
	if strings.HasPrefix(rest, "{") {
		return rest
	}
	return s
}
