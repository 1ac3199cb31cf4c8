package domain

import (
	"bytes"
	"encoding/json"
	"unicode"
)

// Content is a polymorphic message body: either a plain text string or an
// arbitrary structured JSON value. It keeps the exact JSON encoding so
// content round-trips losslessly through the store.
type Content []byte

// Text wraps a plain string as content.
func Text(s string) Content {
	b, _ := json.Marshal(s)
	return Content(b)
}

// JSON wraps a raw JSON value as content. The input is not validated;
// callers own producing well-formed JSON.
func JSON(raw []byte) Content {
	return Content(raw)
}

// MarshalJSON returns the stored encoding verbatim.
func (c Content) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return c, nil
}

// UnmarshalJSON stores the incoming encoding verbatim, string or structured.
func (c *Content) UnmarshalJSON(data []byte) error {
	*c = append((*c)[:0], data...)
	return nil
}

// IsText reports whether the content is a plain JSON string.
func (c Content) IsText() bool {
	for _, b := range c {
		if unicode.IsSpace(rune(b)) {
			continue
		}
		return b == '"'
	}
	return false
}

// Canonical returns the deterministic text form of the content: plain
// strings decode to themselves, structured values compact to their JSON
// encoding. Canonicalizing text that is already canonical yields the same
// text, so the operation never double-escapes.
func (c Content) Canonical() string {
	if len(c) == 0 {
		return ""
	}
	if c.IsText() {
		var s string
		if err := json.Unmarshal(c, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, c); err != nil {
		// Not valid JSON; the store only ever holds JSON-encoded content,
		// so treat the raw bytes as text.
		return string(c)
	}
	if buf.String() == "null" {
		return ""
	}
	return buf.String()
}

// String implements fmt.Stringer via the canonical form.
func (c Content) String() string {
	return c.Canonical()
}
