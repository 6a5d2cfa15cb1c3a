// Package redact strips credentials from request data before it is logged.
//
// Redaction is shallow: only top-level keys are removed. Key matching is
// case-sensitive, so header maps are expected to use lower-case keys.
package redact

import (
	"encoding/json"
	"reflect"
)

// HeaderKeys are removed from header snapshots.
var HeaderKeys = []string{"authorization", "cookie", "x-api-key"}

// BodyKeys are removed from object bodies.
var BodyKeys = []string{"password", "token", "apiKey", "secret"}

// Headers returns a copy of headers without HeaderKeys.
func Headers(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	for _, k := range HeaderKeys {
		delete(out, k)
	}
	return out
}

// Body returns a copy of an object body without BodyKeys. Maps with string
// keys and structs count as objects; structs are viewed through their JSON
// encoding. Any other value, including nil, is returned as is.
func Body(body any) any {
	switch b := body.(type) {
	case nil:
		return nil
	case map[string]any:
		return strip(b)
	case map[string]string:
		out := make(map[string]any, len(b))
		for k, v := range b {
			out[k] = v
		}
		return strip(out)
	}

	if !isObject(body) {
		return body
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil
	}
	return strip(obj)
}

func strip(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for _, k := range BodyKeys {
		delete(out, k)
	}
	return out
}

func isObject(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	default:
		return false
	}
}
