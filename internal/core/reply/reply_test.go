package reply

import "testing"

func TestEncodeDecode_RoundTrip(t *testing.T) {
	r := &Reply{
		Text: "ship it",
		Images: []Image{
			{MimeType: "image/png", Base64Data: "aGVsbG8="},
		},
	}

	encoded, err := r.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	decoded := Decode(encoded)
	if decoded.Text != "ship it" {
		t.Errorf("Text = %q, want %q", decoded.Text, "ship it")
	}
	if len(decoded.Images) != 1 {
		t.Fatalf("Images count = %d, want 1", len(decoded.Images))
	}
	if decoded.Images[0].MimeType != "image/png" {
		t.Errorf("MimeType = %q, want image/png", decoded.Images[0].MimeType)
	}
	if decoded.Images[0].Base64Data != "aGVsbG8=" {
		t.Errorf("Base64Data = %q, want aGVsbG8=", decoded.Images[0].Base64Data)
	}
}

func TestDecode_BareText(t *testing.T) {
	// A consumer that wrote plain text instead of the JSON document
	decoded := Decode("just a plain answer")
	if decoded.Text != "just a plain answer" {
		t.Errorf("Text = %q, want the raw content", decoded.Text)
	}
	if len(decoded.Images) != 0 {
		t.Errorf("Images count = %d, want 0", len(decoded.Images))
	}
}

func TestDecode_EmptyContent(t *testing.T) {
	decoded := Decode("")
	if !decoded.IsEmpty() {
		t.Errorf("Decode(\"\") should be empty")
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		reply Reply
		want  bool
	}{
		{
			name:  "no text no images",
			reply: Reply{},
			want:  true,
		},
		{
			name:  "whitespace only text",
			reply: Reply{Text: "   \n\t"},
			want:  true,
		},
		{
			name:  "has text",
			reply: Reply{Text: "continue"},
			want:  false,
		},
		{
			name:  "images only",
			reply: Reply{Images: []Image{{MimeType: "image/png", Base64Data: "eA=="}}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reply.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
