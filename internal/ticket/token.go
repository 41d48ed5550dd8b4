// Package ticket implements the machine-readable ticket payload: a
// canonical JSON binding of one registrant to one event, rendered into a
// QR image at issuance time and parsed back at check-in.
package ticket

import (
	"encoding/json"
	"errors"
	"strings"
)

// Token is the payload embedded in a rendered ticket. The wire format is
// exactly these four keys, serialized in this order so that re-encoding
// identical input is byte-stable.
type Token struct {
	RegistrantID string `json:"registrant_id"`
	EventID      string `json:"event_id"`
	EventSlug    string `json:"event_slug"`
	Name         string `json:"name"`
}

// ErrMalformedToken is returned by Decode for any payload that does not
// parse into a well-formed token. Callers never see a partially populated
// token.
var ErrMalformedToken = errors.New("malformed ticket token")

// Encode serializes the token to its canonical UTF-8 JSON form.
// encoding/json emits struct fields in declaration order, which pins the
// key order of the wire format.
func (t Token) Encode() ([]byte, error) {
	return json.Marshal(t)
}

// Decode parses raw scanned bytes as a canonical token. The registrant and
// event ids are required; a missing event_slug is accepted here because
// tickets issued before slugs were embedded lack it, and the validator
// reports those as outdated rather than rejecting the scan outright.
func Decode(raw []byte) (Token, error) {
	var t Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return Token{}, ErrMalformedToken
	}
	if strings.TrimSpace(t.RegistrantID) == "" || strings.TrimSpace(t.EventID) == "" {
		return Token{}, ErrMalformedToken
	}
	return t, nil
}

// ArtifactKey derives the blob-store key for a ticket image. The key is a
// pure function of the event slug and registrant id so re-issuance
// overwrites the previous artifact instead of accumulating duplicates.
// Both inputs pass through sanitize before they touch a storage path.
func ArtifactKey(eventSlug, registrantID string) string {
	return sanitize(eventSlug) + "-" + sanitize(registrantID) + ".png"
}

// sanitize strips every character outside a conservative filename alphabet
// (ASCII letters, digits, '-', '_') and lowercases the rest. Free-text
// input must never be able to steer a storage path.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}
