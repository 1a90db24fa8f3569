// internal/model/decode.go
package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
)

// DecodeText reads a JSON string or number as text. Absent or null gives "".
func DecodeText(raw json.RawMessage, field string) (string, error) {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", nil
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", appErrors.NewInvalidField(field, "malformed string")
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", appErrors.NewInvalidField(field, "malformed number")
		}
		return n.String(), nil
	default:
		return "", appErrors.NewInvalidField(field, "must be a string or number")
	}
}

// DecodeFloat reads a JSON number or numeric string. Absent, null or a blank
// string gives nil.
func DecodeFloat(raw json.RawMessage, field string) (*float64, error) {
	s, err := DecodeText(raw, field)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, appErrors.NewInvalidField(field, "must be a number")
	}
	return &f, nil
}

// DecodeInt is DecodeFloat for whole numbers.
func DecodeInt(raw json.RawMessage, field string) (*int64, error) {
	s, err := DecodeText(raw, field)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, appErrors.NewInvalidField(field, "must be a whole number")
	}
	return &n, nil
}
