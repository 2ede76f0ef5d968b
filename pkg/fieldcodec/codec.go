// Package fieldcodec converts between storage wire values and typed domain
// values, parameterized by a field's declared type. The wire representation
// is textual; the codec is stateless and both directions pass nil through
// untouched. It runs in the type-mapping rings immediately on either side of
// the storage ring, so every other ring sees fully typed domain values.
package fieldcodec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/structhub-io/structhub/pkg/model"
)

// Decode converts a wire value into a domain value for the given declared
// type. nil passes through. Array fields decode element-wise; a non-slice
// wire value for an array field is an error.
func Decode(ft model.FieldType, isArray bool, wire any) (any, error) {
	if wire == nil {
		return nil, nil
	}
	if isArray {
		items, ok := wire.([]any)
		if !ok {
			return nil, fmt.Errorf("decode %s[]: expected list, got %T", ft, wire)
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := decodeScalar(ft, item)
			if err != nil {
				return nil, fmt.Errorf("decode %s[] element %d: %w", ft, i, err)
			}
			out[i] = v
		}
		return out, nil
	}
	return decodeScalar(ft, wire)
}

// Encode converts a domain value into its wire representation for the given
// declared type. nil passes through. Encoding fails loudly when a structured
// value cannot be serialized; it never silently coerces.
func Encode(ft model.FieldType, isArray bool, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if isArray {
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("encode %s[]: expected list, got %T", ft, v)
		}
		out := make([]any, len(items))
		for i, item := range items {
			w, err := encodeScalar(ft, item)
			if err != nil {
				return nil, fmt.Errorf("encode %s[] element %d: %w", ft, i, err)
			}
			out[i] = w
		}
		return out, nil
	}
	return encodeScalar(ft, v)
}

func decodeScalar(ft model.FieldType, wire any) (any, error) {
	switch ft {
	case model.TypeInt:
		switch w := wire.(type) {
		case string:
			n, err := strconv.ParseInt(w, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("decode int: %w", err)
			}
			return n, nil
		case int64:
			return w, nil
		case int:
			return int64(w), nil
		case float64:
			// JSON numbers arrive as float64.
			return int64(w), nil
		}
		return nil, fmt.Errorf("decode int: unsupported wire type %T", wire)

	case model.TypeFloat:
		switch w := wire.(type) {
		case string:
			f, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return nil, fmt.Errorf("decode float: %w", err)
			}
			return f, nil
		case float64:
			return w, nil
		case int64:
			return float64(w), nil
		case int:
			return float64(w), nil
		}
		return nil, fmt.Errorf("decode float: unsupported wire type %T", wire)

	case model.TypeBool:
		switch w := wire.(type) {
		case string:
			b, err := strconv.ParseBool(w)
			if err != nil {
				return nil, fmt.Errorf("decode bool: %w", err)
			}
			return b, nil
		case bool:
			return w, nil
		}
		return nil, fmt.Errorf("decode bool: unsupported wire type %T", wire)

	case model.TypeDateTime:
		switch w := wire.(type) {
		case string:
			t, err := time.Parse(time.RFC3339, w)
			if err != nil {
				return nil, fmt.Errorf("decode datetime: %w", err)
			}
			return t, nil
		case time.Time:
			return w, nil
		}
		return nil, fmt.Errorf("decode datetime: unsupported wire type %T", wire)

	case model.TypeJSON:
		switch w := wire.(type) {
		case string:
			var out any
			if err := json.Unmarshal([]byte(w), &out); err != nil {
				return nil, fmt.Errorf("decode json: %w", err)
			}
			return out, nil
		case []byte:
			var out any
			if err := json.Unmarshal(w, &out); err != nil {
				return nil, fmt.Errorf("decode json: %w", err)
			}
			return out, nil
		}
		// Already structured; pass through.
		return wire, nil

	default:
		// TypeString and unknown types pass through.
		return wire, nil
	}
}

func encodeScalar(ft model.FieldType, v any) (any, error) {
	switch ft {
	case model.TypeInt:
		switch d := v.(type) {
		case int64:
			return strconv.FormatInt(d, 10), nil
		case int:
			return strconv.Itoa(d), nil
		case float64:
			return strconv.FormatInt(int64(d), 10), nil
		case string:
			return d, nil
		}
		return nil, fmt.Errorf("encode int: unsupported domain type %T", v)

	case model.TypeFloat:
		switch d := v.(type) {
		case float64:
			return strconv.FormatFloat(d, 'g', -1, 64), nil
		case int64:
			return strconv.FormatInt(d, 10), nil
		case int:
			return strconv.Itoa(d), nil
		case string:
			return d, nil
		}
		return nil, fmt.Errorf("encode float: unsupported domain type %T", v)

	case model.TypeBool:
		switch d := v.(type) {
		case bool:
			return strconv.FormatBool(d), nil
		case string:
			return d, nil
		}
		return nil, fmt.Errorf("encode bool: unsupported domain type %T", v)

	case model.TypeDateTime:
		switch d := v.(type) {
		case time.Time:
			return d.Format(time.RFC3339), nil
		case string:
			return d, nil
		}
		return nil, fmt.Errorf("encode datetime: unsupported domain type %T", v)

	case model.TypeJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return string(b), nil

	default:
		return v, nil
	}
}
