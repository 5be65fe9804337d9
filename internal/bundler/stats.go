package bundler

import (
	"encoding/json"
	"fmt"
)

// Stats is the completion report of one bundler run.
type Stats struct {
	Errors   []any `json:"errors,omitempty"`
	Warnings []any `json:"warnings,omitempty"`
}

// UnmarshalJSON accepts either a list or a single value for errors and
// warnings.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw struct {
		Errors   any `json:"errors"`
		Warnings any `json:"warnings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Errors = asList(raw.Errors)
	s.Warnings = asList(raw.Warnings)
	return nil
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

func (s *Stats) HasErrors() bool   { return s != nil && len(s.Errors) > 0 }
func (s *Stats) HasWarnings() bool { return s != nil && len(s.Warnings) > 0 }

// ErrorPayload serializes the reported errors as JSON. A single error is
// serialized on its own rather than as a one-element list.
func (s *Stats) ErrorPayload() string {
	if s == nil {
		return ""
	}
	raw, err := json.Marshal(payload(s.Errors))
	if err != nil {
		return fmt.Sprint(s.Errors)
	}
	return string(raw)
}

// WarningPayload renders the reported warnings for logging. A single string
// warning is returned verbatim.
func (s *Stats) WarningPayload() string {
	if s == nil {
		return ""
	}
	p := payload(s.Warnings)
	if str, ok := p.(string); ok {
		return str
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprint(p)
	}
	return string(raw)
}

func payload(items []any) any {
	if len(items) == 1 {
		return items[0]
	}
	return items
}
