package hbase

import (
	"fmt"
	"strings"
)

// Settings is the loosely typed connection settings map of a job. Values may be strings, booleans, numbers or
// nested maps.
type Settings map[string]interface{}

// String returns the value at key formatted as string. Absent and nil values read as "".
func (s Settings) String(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", v)
}

// Bool reads key as a flag. Booleans are used as is, strings are true only if they equal "true" ignoring case, numbers
// are true when non-zero.
func (s Settings) Bool(key string) bool {
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

func isNested(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, Settings, map[interface{}]interface{}, map[string]string:
		return true
	}
	return false
}
