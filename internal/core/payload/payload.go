// Package payload contains the pure logic for structured cue payloads.
// The engine stores payloads opaquely; only the console interprets them, and
// a payload it cannot interpret degrades to plain text rather than failing.
package payload

import (
	"encoding/json"
	"fmt"
)

// Payload kinds.
const (
	KindChoice  = "choice"
	KindConfirm = "confirm"
	KindForm    = "form"
)

// Payload is a structured input request attached to a cue.
type Payload struct {
	Type          string   `json:"type"`
	Options       []Option `json:"options,omitempty"`        // choice
	AllowMultiple bool     `json:"allow_multiple,omitempty"` // choice
	Text          string   `json:"text,omitempty"`           // confirm
	ConfirmLabel  string   `json:"confirm_label,omitempty"`  // confirm
	CancelLabel   string   `json:"cancel_label,omitempty"`   // confirm
	Fields        []Field  `json:"fields,omitempty"`         // form
}

// Option is a single selectable choice.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Field is a single form field request.
type Field struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind,omitempty"` // text, number, etc.; informational
}

// Parse decodes a payload JSON string. Returns nil for an empty payload.
func Parse(raw string) (*Payload, error) {
	if raw == "" {
		return nil, nil
	}
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the payload's structural rules.
// Rules:
// - type must be choice, confirm, or form
// - choice needs at least one option, each with an id
// - form needs at least one field, each with an id
func (p *Payload) Validate() error {
	switch p.Type {
	case KindChoice:
		if len(p.Options) == 0 {
			return fmt.Errorf("choice payload needs at least one option")
		}
		for i, opt := range p.Options {
			if opt.ID == "" {
				return fmt.Errorf("choice option %d has no id", i)
			}
		}
	case KindConfirm:
		// text is optional; the prompt carries the question
	case KindForm:
		if len(p.Fields) == 0 {
			return fmt.Errorf("form payload needs at least one field")
		}
		for i, f := range p.Fields {
			if f.ID == "" {
				return fmt.Errorf("form field %d has no id", i)
			}
		}
	default:
		return fmt.Errorf("unknown payload type: %q", p.Type)
	}
	return nil
}

// ConfirmLabels returns the confirm/cancel labels with defaults applied.
func (p *Payload) ConfirmLabels() (confirm, cancel string) {
	confirm, cancel = p.ConfirmLabel, p.CancelLabel
	if confirm == "" {
		confirm = "Confirm"
	}
	if cancel == "" {
		cancel = "Cancel"
	}
	return confirm, cancel
}
