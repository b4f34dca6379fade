// Package reply contains the pure logic for the human reply document stored
// in cue_responses.content. This is part of the Functional Core - no I/O,
// only encoding, decoding, and classification.
package reply

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reply is the JSON document the console writes and the engine reads back.
// The wire format is shared with every consumer that speaks to the same
// mailbox, so field names are load-bearing.
type Reply struct {
	Text   string  `json:"text"`
	Images []Image `json:"images,omitempty"`
}

// Image is an inline image attachment.
type Image struct {
	MimeType   string `json:"mime_type"`   // image/png, image/jpeg, etc.
	Base64Data string `json:"base64_data"` // base64-encoded image bytes
}

// Encode serializes the reply for storage.
func (r *Reply) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode reply: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored reply document. Content written by a consumer that
// stored bare text (not JSON) is preserved as a text-only reply, so Decode
// never fails.
func Decode(content string) *Reply {
	var r Reply
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		if strings.TrimSpace(content) == "" {
			return &Reply{}
		}
		return &Reply{Text: content}
	}
	return &r
}

// IsEmpty reports whether the reply carries nothing: no text after trimming
// and no images. An empty reply means the human ended the conversation.
func (r *Reply) IsEmpty() bool {
	return strings.TrimSpace(r.Text) == "" && len(r.Images) == 0
}
