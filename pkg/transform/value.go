package transform

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// stringify renders a field value the way the string transforms expect:
// null becomes the empty string, numbers render without a trailing ".0",
// arrays join their elements with commas.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// stringParam returns the named parameter as a string, or "" when absent.
func stringParam(params map[string]interface{}, name string) string {
	if raw, ok := params[name]; ok && raw != nil {
		return stringify(raw)
	}
	return ""
}

// intParam returns the named parameter as an int, tolerating the float64
// that encoding/json produces and numeric strings from YAML files.
func intParam(params map[string]interface{}, name string, fallback int) int {
	raw, ok := params[name]
	if !ok || raw == nil {
		return fallback
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// fieldsParam returns the "fields" parameter as a list of field names.
func fieldsParam(params map[string]interface{}) []string {
	raw, ok := params["fields"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		fields := make([]string, 0, len(v))
		for _, item := range v {
			if name, ok := item.(string); ok {
				fields = append(fields, name)
			}
		}
		return fields
	}
	return nil
}
