// internal/backend/wire.go
package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Payload is the upstream job document. Only title, company, location,
// posted_date and job_url are reliably present; everything else is optional.
type Payload struct {
	ListingID    string     `json:"listing_id"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	PostedDate   string     `json:"posted_date"`
	JobURL       string     `json:"job_url"`
	Description  string     `json:"description"`
	Skills       stringList `json:"skills"`
	Type         string     `json:"type"`
	Source       string     `json:"source"`
	Salary       string     `json:"salary"`
	Requirements stringList `json:"requirements"`
	Category     string     `json:"category"`
	Experience   string     `json:"experience"`
	Logo         string     `json:"logo"`
	ID           flexibleID `json:"id"`
	Score        *float64   `json:"score"`
	Nested       *Payload   `json:"payload"`
}

// Record is one upstream job: a point id, an optional relevance score and its payload.
type Record struct {
	ID       string
	Score    float64
	HasScore bool
	Payload  Payload
}

// UnmarshalJSON accepts both {id, score, payload:{...}} points and flat
// listing documents.
func (r *Record) UnmarshalJSON(data []byte) error {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.ID = string(p.ID)
	if p.Score != nil {
		r.Score = *p.Score
		r.HasScore = true
	}
	if p.Nested != nil {
		r.Payload = *p.Nested
		if r.ID == "" {
			r.ID = string(p.Nested.ID)
		}
	} else {
		r.Payload = p
	}
	r.Payload.Nested = nil
	return nil
}

// RecordFromSource builds a Record from a search-engine hit.
func RecordFromSource(id string, score float64, source json.RawMessage) (Record, error) {
	var r Record
	if err := json.Unmarshal(source, &r); err != nil {
		return Record{}, err
	}
	if r.ID == "" {
		r.ID = id
	}
	r.Score = score
	r.HasScore = true
	return r, nil
}

// decodeRecords accepts a bare array or a {"jobs": [...]} / {"data": [...]} envelope.
func decodeRecords(raw json.RawMessage) ([]Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var records []Record
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var envelope struct {
		Jobs []Record `json:"jobs"`
		Data []Record `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	switch {
	case envelope.Jobs != nil:
		return envelope.Jobs, nil
	case envelope.Data != nil:
		return envelope.Data, nil
	default:
		return nil, fmt.Errorf("unrecognised job list envelope")
	}
}

// flexibleID decodes a JSON string or number into its string form.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*f = flexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	if fl, err := n.Float64(); err == nil && fl == math.Trunc(fl) {
		*f = flexibleID(strconv.FormatFloat(fl, 'f', 0, 64))
		return nil
	}
	*f = flexibleID(n.String())
	return nil
}

// stringList decodes either a JSON array of strings or a comma-separated string.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		var out []string
		for _, part := range strings.Split(joined, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*s = out
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}
