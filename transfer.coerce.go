package main

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// isTruthy tells whether a decoded JSON value counts as present:
// null, false, 0 and the empty string do not.
func isTruthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}

// coerceText renders a present JSON value as text, or "" when absent.
func coerceText(v interface{}) string {
	if !isTruthy(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// coerceMillis reads a creation timestamp in milliseconds. It accepts a
// number, a numeric string or an RFC3339 time. Anything else is 0.
func coerceMillis(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || math.Abs(t) >= 1<<63 {
			return 0
		}
		return int64(t)
	case string:
		s := strings.TrimSpace(t)
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ms
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts.UnixMilli()
		}
	}
	return 0
}
