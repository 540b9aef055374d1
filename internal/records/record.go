// Package records holds the attendance record model and the pure filtering
// logic applied to a fetched record list.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one participant's registration and check-in data.
// Missing text fields decode to "", missing dates to nil.
type Record struct {
	ID               string     `json:"_id"`
	Name             string     `json:"name"`
	Gender           string     `json:"gender"`
	Email            string     `json:"email"`
	Phone            string     `json:"whatsappNumber"`
	College          string     `json:"college"`
	Branch           string     `json:"branch"`
	Slot             string     `json:"slot"`
	Attendance       bool       `json:"attendance"`
	AttendanceDate   *time.Time `json:"attendanceDate,omitempty"`
	RegistrationDate *time.Time `json:"registrationDate,omitempty"`
}

// ComparisonDate is the date used for range filtering: the attendance date
// when present, else the registration date.
func (r Record) ComparisonDate() (time.Time, bool) {
	if r.AttendanceDate != nil {
		return *r.AttendanceDate, true
	}
	if r.RegistrationDate != nil {
		return *r.RegistrationDate, true
	}
	return time.Time{}, false
}

type wireRecord struct {
	ID               json.RawMessage `json:"_id"`
	Name             json.RawMessage `json:"name"`
	Gender           json.RawMessage `json:"gender"`
	Email            json.RawMessage `json:"email"`
	Phone            json.RawMessage `json:"whatsappNumber"`
	College          json.RawMessage `json:"college"`
	Branch           json.RawMessage `json:"branch"`
	Slot             json.RawMessage `json:"slot"`
	Attendance       json.RawMessage `json:"attendance"`
	AttendanceDate   json.RawMessage `json:"attendanceDate"`
	RegistrationDate json.RawMessage `json:"registrationDate"`
}

// UnmarshalJSON decodes a record leniently. Only a non-object input is an
// error, null included; wrongly typed fields degrade to their zero value.
func (r *Record) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotObject
	}
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Record{
		ID:               text(w.ID),
		Name:             text(w.Name),
		Gender:           text(w.Gender),
		Email:            text(w.Email),
		Phone:            text(w.Phone),
		College:          text(w.College),
		Branch:           text(w.Branch),
		Slot:             text(w.Slot),
		Attendance:       flag(w.Attendance),
		AttendanceDate:   timestamp(w.AttendanceDate),
		RegistrationDate: timestamp(w.RegistrationDate),
	}
	return nil
}

var errNotObject = errors.New("attendance record is not a JSON object")

// DecodeList decodes a JSON array of records. Elements that are not objects
// are skipped and their indexes returned so callers can log them.
func DecodeList(data []byte) ([]Record, []int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	out := make([]Record, 0, len(raw))
	var skipped []int
	for i, elem := range raw {
		var rec Record
		if err := json.Unmarshal(elem, &rec); err != nil {
			skipped = append(skipped, i)
			continue
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{':
		// Mongo extended JSON ids: {"$oid": "..."}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err == nil {
			if oid, ok := obj["$oid"]; ok {
				return text(oid)
			}
		}
		return string(raw)
	case '[':
		return ""
	default:
		// numbers and booleans keep their literal spelling
		return string(raw)
	}
}

func flag(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func timestamp(raw json.RawMessage) *time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] != '"' {
		ms, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
			return nil
		}
		t := time.UnixMilli(int64(ms)).UTC()
		return &t
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return ParseTimestamp(s)
}

// ParseTimestamp parses the timestamp spellings the attendance backend emits.
// Zone-less values are read as UTC. It returns nil for empty or unparseable
// input.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}
