package payload

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantNil  bool
		wantErr  bool
		wantType string
	}{
		{
			name:    "empty payload is nil",
			raw:     "",
			wantNil: true,
		},
		{
			name:     "valid choice",
			raw:      `{"type":"choice","options":[{"id":"A","label":"Continue"},{"id":"B","label":"Stop"}]}`,
			wantType: KindChoice,
		},
		{
			name:     "valid confirm",
			raw:      `{"type":"confirm","text":"Continue?"}`,
			wantType: KindConfirm,
		},
		{
			name:     "valid form",
			raw:      `{"type":"form","fields":[{"id":"title","label":"Title","kind":"text"}]}`,
			wantType: KindForm,
		},
		{
			name:    "invalid JSON",
			raw:     `{"type":`,
			wantErr: true,
		},
		{
			name:    "unknown type",
			raw:     `{"type":"slider"}`,
			wantErr: true,
		},
		{
			name:    "choice without options",
			raw:     `{"type":"choice"}`,
			wantErr: true,
		},
		{
			name:    "choice option missing id",
			raw:     `{"type":"choice","options":[{"label":"No id"}]}`,
			wantErr: true,
		},
		{
			name:    "form without fields",
			raw:     `{"type":"form"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got none", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.raw, err)
			}
			if tt.wantNil {
				if p != nil {
					t.Fatalf("Parse(%q) = %+v, want nil", tt.raw, p)
				}
				return
			}
			if p.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", p.Type, tt.wantType)
			}
		})
	}
}

func TestConfirmLabels_Defaults(t *testing.T) {
	p := &Payload{Type: KindConfirm}
	confirm, cancel := p.ConfirmLabels()
	if confirm != "Confirm" {
		t.Errorf("confirm label = %q, want Confirm", confirm)
	}
	if cancel != "Cancel" {
		t.Errorf("cancel label = %q, want Cancel", cancel)
	}
}

func TestConfirmLabels_Custom(t *testing.T) {
	p := &Payload{Type: KindConfirm, ConfirmLabel: "Ship", CancelLabel: "Hold"}
	confirm, cancel := p.ConfirmLabels()
	if confirm != "Ship" {
		t.Errorf("confirm label = %q, want Ship", confirm)
	}
	if cancel != "Hold" {
		t.Errorf("cancel label = %q, want Hold", cancel)
	}
}
