package backend

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// MessageMap holds the messages of a snapshot in the order the backend
// serialized them. The wire format is a JSON object keyed by message id.
type MessageMap []MessageRecord

// UnmarshalJSON decodes the messageMap object entry by entry so that the
// resulting slice keeps payload order.
func (m *MessageMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "reading messageMap")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Errorf("messageMap: expected object, got %v", tok)
	}

	var out MessageMap
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "reading messageMap key")
		}
		id, ok := keyTok.(string)
		if !ok {
			return errors.Errorf("messageMap: unexpected key %v", keyTok)
		}

		var rec MessageRecord
		if err := dec.Decode(&rec); err != nil {
			return errors.Wrapf(err, "decoding message %q", id)
		}
		rec.ID = id
		rec.Position = len(out)
		out = append(out, rec)
	}

	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "closing messageMap")
	}

	*m = out
	return nil
}

// Text returns the first non-empty text body of the record, trimmed.
func (r MessageRecord) Text() string {
	for _, c := range r.Content {
		if c.ContentType != ContentTypeText {
			continue
		}
		if body := strings.TrimSpace(c.Body); body != "" {
			return body
		}
	}
	return ""
}
