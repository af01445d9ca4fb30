package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one row of the examples table as injected into the page: a stable id plus
// named fields holding either a label or a numeric metric. Records are read-only.
type Record struct {
	ID     string
	Fields map[string]any
}

// NewRecord creates a record from an id and field values
func NewRecord(id string, fields map[string]any) Record {
	if fields == nil {
		fields = map[string]any{}
	}
	return Record{ID: id, Fields: fields}
}

// Value returns the raw field value; nil when missing
func (r Record) Value(key string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[key]
}

// Number parses the field as a finite number. Strings are accepted because decimals
// arrive as JSON strings from some producers.
func (r Record) Number(key string) (float64, bool) {
	return ParseNumber(r.Value(key))
}

// Label returns the field as text; missing and empty values report false
func (r Record) Label(key string) (string, bool) {
	switch v := r.Value(key).(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// ParseNumber converts a decoded JSON value into a finite float
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// UnmarshalJSON reads a flat JSON object; "id" becomes the record id
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("record must be a JSON object")
	}

	switch id := fields["id"].(type) {
	case string:
		r.ID = id
	case float64:
		r.ID = strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		r.ID = ""
	default:
		r.ID = fmt.Sprint(id)
	}
	delete(fields, "id")
	r.Fields = fields
	return nil
}

// MarshalJSON writes the record back as a flat object
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	return json.Marshal(out)
}

// DecodeDataset parses the injected dataset payload, a JSON array of records
func DecodeDataset(raw []byte) ([]Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("dataset payload is empty")
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return records, nil
}

// EncodeDataset renders records as the dataset payload
func EncodeDataset(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}
