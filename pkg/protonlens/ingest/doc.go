package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AppID identifies a game. ProtonDB serves it as a string or a number; both
// decode to the same value.
type AppID string

// UnmarshalJSON accepts "123" and 123.
func (id *AppID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = AppID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("app id: %w", err)
	}
	*id = AppID(n.String())
	return nil
}

// Game is one catalogue entry.
type Game struct {
	AppID AppID  `json:"appId"`
	Title string `json:"title"`
}

// Report is one user compatibility report. Only Notes feeds the analysis;
// the other fields ride along as raw JSON so their types never matter.
type Report struct {
	Notes         *string         `json:"notes"`
	Rating        json.RawMessage `json:"rating,omitempty"`
	ProtonVersion json.RawMessage `json:"protonVersion,omitempty"`
	Timestamp     json.RawMessage `json:"timestamp,omitempty"`

	raw json.RawMessage // set only for malformed reports
}

// UnmarshalJSON never fails on a well-formed JSON value. A report that is
// not an object, or whose notes are not a string, decodes as malformed and
// keeps its original bytes.
func (r *Report) UnmarshalJSON(data []byte) error {
	var fields struct {
		Notes         json.RawMessage `json:"notes"`
		Rating        json.RawMessage `json:"rating"`
		ProtonVersion json.RawMessage `json:"protonVersion"`
		Timestamp     json.RawMessage `json:"timestamp"`
	}
	*r = Report{}
	if err := json.Unmarshal(data, &fields); err != nil {
		r.raw = append(json.RawMessage(nil), data...)
		return nil
	}
	r.Rating = fields.Rating
	r.ProtonVersion = fields.ProtonVersion
	r.Timestamp = fields.Timestamp

	notes := bytes.TrimSpace(fields.Notes)
	if len(notes) == 0 || bytes.Equal(notes, []byte("null")) {
		return nil
	}
	var text string
	if err := json.Unmarshal(notes, &text); err != nil {
		*r = Report{raw: append(json.RawMessage(nil), data...)}
		return nil
	}
	r.Notes = &text
	return nil
}

// MarshalJSON writes a malformed report back exactly as it was read.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	type plain Report
	return json.Marshal(plain(r))
}

// Malformed reports whether the report could not be read as a report.
func (r *Report) Malformed() bool {
	return r != nil && r.raw != nil
}

// NoteText returns the trimmed notes of a report, or the reason the report
// carries nothing to analyze.
func NoteText(r *Report) (string, SkipReason) {
	if r == nil {
		return "", SkipNilReport
	}
	if r.Malformed() {
		return "", SkipMalformed
	}
	if r.Notes == nil {
		return "", SkipNoNotes
	}
	text := strings.TrimSpace(*r.Notes)
	if text == "" {
		return "", SkipBlankNotes
	}
	return text, Accepted
}

// SkipReason explains why a report produced no note. Skips are expected
// data-quality gaps, not errors.
type SkipReason int

const (
	Accepted SkipReason = iota
	SkipNilReport
	SkipNoNotes
	SkipBlankNotes
	SkipNoTokens
	SkipAnalysisFailed
	SkipMalformed
)

func (r SkipReason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case SkipNilReport:
		return "nil_report"
	case SkipNoNotes:
		return "no_notes"
	case SkipBlankNotes:
		return "blank_notes"
	case SkipNoTokens:
		return "no_tokens"
	case SkipAnalysisFailed:
		return "analysis_failed"
	case SkipMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("skip(%d)", int(r))
	}
}
