package filterstate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// MarshalJSON writes {"hidden":[...],"shown":[...],"featured":{key:{min,max,mode}},"search":"..."}
// with featured keys in the order they were added.
func (s State) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"hidden":`)
	if err := writeJSON(&buf, nonNil(s.Hidden)); err != nil {
		return nil, err
	}
	buf.WriteString(`,"shown":`)
	if err := writeJSON(&buf, nonNil(s.Shown)); err != nil {
		return nil, err
	}
	buf.WriteString(`,"featured":{`)
	for i, f := range s.Featured {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, f.Range); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	if s.Search != "" {
		buf.WriteString(`,"search":`)
		if err := writeJSON(&buf, s.Search); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the persisted shape. Featured entries keep document order; an entry without
// min/max gets the default bounds and a missing mode is left empty for Normalize to repair.
func (s *State) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("filter state is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("filter state must be a JSON object")
	}

	next := State{
		Hidden:   stringList(root.Get("hidden")),
		Shown:    stringList(root.Get("shown")),
		Featured: []FeaturedColumn{},
		Search:   root.Get("search").String(),
	}

	featured := root.Get("featured")
	if featured.IsObject() {
		featured.ForEach(func(key, value gjson.Result) bool {
			r := DefaultRange()
			r.Mode = Mode(value.Get("mode").String())
			if v := value.Get("min"); v.Exists() {
				r.Min = int(v.Int())
			}
			if v := value.Get("max"); v.Exists() {
				r.Max = int(v.Int())
			}
			next.Featured = append(next.Featured, FeaturedColumn{Key: key.String(), Range: r})
			return true
		})
	}

	*s = next
	return nil
}

func stringList(result gjson.Result) []string {
	out := []string{}
	if !result.IsArray() {
		return out
	}
	for _, item := range result.Array() {
		if item.Type == gjson.String {
			out = append(out, item.String())
		}
	}
	return out
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func writeJSON(buf *bytes.Buffer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(raw)
	return nil
}
