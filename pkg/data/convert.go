package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsupportedType is returned when a native value has no mapping onto the
// String | Map | List union.
var ErrUnsupportedType = errors.New("unsupported data type")

// FromJSON decodes a JSON document into a Value: null becomes "", booleans
// and numbers become their textual representation (with superfluous trailing
// fractional zeros trimmed), objects become maps and arrays become lists.
func FromJSON(raw []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Null(), errors.Errorf("decoding json data: %w", err)
	}
	return FromAny(doc)
}

// FromYAML decodes a YAML document with the same mapping as FromJSON.
// Non-string map keys are coerced to text.
func FromYAML(raw []byte) (Value, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Null(), errors.Errorf("decoding yaml data: %w", err)
	}
	return FromAny(doc)
}

// FromAny converts an already-decoded generic value (the shapes produced by
// encoding/json and goccy/go-yaml) into a Value. There is no reflective
// struct support: callers pre-convert native structures.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Text(""), nil
	case string:
		return Text(t), nil
	case bool:
		return Text(strconv.FormatBool(t)), nil
	case json.Number:
		return Text(formatNumber(t.String())), nil
	case int:
		return Text(strconv.Itoa(t)), nil
	case int64:
		return Text(strconv.FormatInt(t, 10)), nil
	case uint64:
		return Text(strconv.FormatUint(t, 10)), nil
	case float64:
		return Text(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			conv, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			m[k] = conv
		}
		return Map(m), nil
	case map[any]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			conv, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			m[fmt.Sprint(k)] = conv
		}
		return Map(m), nil
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			conv, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			items = append(items, conv)
		}
		return List(items...), nil
	case Value:
		return t, nil
	}
	return Null(), errors.Errorf("%w: %T", ErrUnsupportedType, v)
}

// formatNumber trims superfluous trailing fractional zeros ("1.50" -> "1.5",
// "2.00" -> "2") without ever touching a sole leading integer zero ("0.5"
// stays "0.5"). Plain integer literals pass through untouched.
func formatNumber(lit string) string {
	if !strings.ContainsAny(lit, ".eE") {
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
