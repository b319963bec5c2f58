package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

var codeFence = regexp.MustCompile("(?m)^[ \t]*```[a-zA-Z]*[ \t]*\r?\n?")

// StripCodeFences removes markdown code fences models like to wrap JSON in.
func StripCodeFences(s string) string {
	s = codeFence.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "{"); ok {
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// GenerateSchema reflects a JSON schema for the type behind value, suitable
// for strict structured output.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return reflector.Reflect(reflect.New(t).Interface())
}

// UnmarshalFlexible decodes model output into out. It accepts plain JSON,
// JSON wrapped in markdown fences, double-encoded JSON strings and, as a
// last resort, JSON that jsonrepair can fix (unquoted keys, single quotes,
// trailing commas, missing closing brackets).
//
// Example:
//
//	var result MyStruct
//	UnmarshalFlexible(`{"name": "test"}`, &result)
//	UnmarshalFlexible("```json\n{\"name\": \"test\"}\n```", &result)
//	UnmarshalFlexible(`{name: "test"}`, &result)
func UnmarshalFlexible(input string, out any) error {
	input = StripCodeFences(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = StripCodeFences(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	input = stripDuplicateLeadingBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w (input: %s)", err, truncate(input, 200))
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w (input: %s)", err, truncate(input, 200))
	}
	return nil
}

// DecodeResult is the outcome of decoding a list from model output. Items
// holds every element that decoded; Skipped counts elements that did not.
// Err is set only when the output was not a list at all.
type DecodeResult[T any] struct {
	Items   []T
	Skipped int
	Err     error
}

// OK reports whether the output was a list.
func (r DecodeResult[T]) OK() bool { return r.Err == nil }

// DecodeList decodes a JSON array of T from model output, tolerating broken
// elements. An object wrapping a single array field ({"edges": [...]}) is
// unwrapped, which is what strict structured output produces.
func DecodeList[T any](input string) DecodeResult[T] {
	var raw []json.RawMessage
	if err := UnmarshalFlexible(input, &raw); err != nil {
		var wrapped map[string]json.RawMessage
		if werr := UnmarshalFlexible(input, &wrapped); werr != nil {
			return DecodeResult[T]{Err: err}
		}
		var ok bool
		if raw, ok = singleArrayField(wrapped); !ok {
			return DecodeResult[T]{Err: fmt.Errorf("expected a JSON array, got an object with %d fields", len(wrapped))}
		}
	}

	res := DecodeResult[T]{Items: make([]T, 0, len(raw))}
	for _, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			res.Skipped++
			continue
		}
		res.Items = append(res.Items, v)
	}
	return res
}

func singleArrayField(obj map[string]json.RawMessage) ([]json.RawMessage, bool) {
	var found []json.RawMessage
	arrays := 0
	for _, v := range obj {
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			found = arr
			arrays++
		}
	}
	return found, arrays == 1
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
