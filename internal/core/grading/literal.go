package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

// pythonLiteral renders v as a Python expression that evaluates to an equal value.
func pythonLiteral(v interface{}) (string, error) {
	var sb strings.Builder
	if err := writePython(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writePython(sb *strings.Builder, v interface{}) error {
	switch val := v.(type) {
	case nil:
		sb.WriteString("None")
	case bool:
		if val {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case json.Number:
		f, err := val.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: number %q", errs.UnrepresentableValue, val.String())
		}
		sb.WriteString(val.String())
	case string:
		writePythonString(sb, val)
	case int:
		sb.WriteString(strconv.Itoa(val))
	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))
	case float64:
		s, err := pythonFloat(val)
		if err != nil {
			return err
		}
		sb.WriteString(s)
	case []interface{}:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := writePython(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			writePythonString(sb, k)
			sb.WriteString(": ")
			if err := writePython(sb, val[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return writePythonReflect(sb, reflect.ValueOf(v))
	}
	return nil
}

// writePythonReflect covers typed slices, maps and numbers coming from callers
// that did not decode through encoding/json.
func writePythonReflect(sb *strings.Builder, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sb.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sb.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		s, err := pythonFloat(rv.Float())
		if err != nil {
			return err
		}
		sb.WriteString(s)
	case reflect.Slice, reflect.Array:
		items := make([]interface{}, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return writePython(sb, items)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key of type %s", errs.UnrepresentableValue, rv.Type().Key())
		}
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return writePython(sb, m)
	default:
		return fmt.Errorf("%w: %T", errs.UnrepresentableValue, rv.Interface())
	}
	return nil
}

func pythonFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v", errs.UnrepresentableValue, f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

func writePythonString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
			sb.WriteString(`\ufffd`)
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '"':
			sb.WriteString(`\"`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(sb, `\x%02x`, r)
		case r == 0x2028 || r == 0x2029:
			fmt.Fprintf(sb, `\u%04x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}

// jsLiteral renders v as JSON, which is also a valid JavaScript expression.
func jsLiteral(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: %v", errs.UnrepresentableValue, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
