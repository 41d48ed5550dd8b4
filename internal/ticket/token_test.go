package ticket

import (
	"bytes"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	tok := Token{
		RegistrantID: "R123",
		EventID:      "E1",
		EventSlug:    "adph-2026",
		Name:         "Jane Doe",
	}
	raw, err := tok.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != tok {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, tok)
	}
}

func TestEncodeIsByteStable(t *testing.T) {
	tok := Token{RegistrantID: "R123", EventID: "E1", EventSlug: "adph-2026", Name: "Jane Doe"}
	a, err := tok.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := tok.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("re-encoding identical input produced different bytes:\n%s\n%s", a, b)
	}
}

func TestEncodeKeyOrder(t *testing.T) {
	tok := Token{RegistrantID: "R123", EventID: "E1", EventSlug: "adph-2026", Name: "Jane Doe"}
	raw, err := tok.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"registrant_id":"R123","event_id":"E1","event_slug":"adph-2026","name":"Jane Doe"}`
	if string(raw) != want {
		t.Fatalf("canonical form changed:\n got %s\nwant %s", raw, want)
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":             "not-a-token",
		"json array":           `["registrant_id","event_id"]`,
		"wrong value type":     `{"registrant_id":123,"event_id":"E1"}`,
		"missing registrant":   `{"event_id":"E1","event_slug":"adph-2026","name":"Jane"}`,
		"missing event id":     `{"registrant_id":"R123","event_slug":"adph-2026","name":"Jane"}`,
		"blank registrant":     `{"registrant_id":"  ","event_id":"E1"}`,
		"empty object":         `{}`,
	}
	for name, raw := range cases {
		if _, err := Decode([]byte(raw)); err != ErrMalformedToken {
			t.Errorf("%s: expected ErrMalformedToken, got %v", name, err)
		}
	}
}

func TestDecodeAcceptsLegacyTokenWithoutSlug(t *testing.T) {
	// Tickets issued before the slug was embedded parse fine; the
	// validator is responsible for flagging them as outdated.
	got, err := Decode([]byte(`{"registrant_id":"R123","event_id":"E1","name":"Jane Doe"}`))
	if err != nil {
		t.Fatalf("decode legacy token: %v", err)
	}
	if got.EventSlug != "" {
		t.Fatalf("expected empty slug, got %q", got.EventSlug)
	}
}

func TestArtifactKeyDeterministicAndSafe(t *testing.T) {
	a := ArtifactKey("adph-2026", "R123")
	b := ArtifactKey("adph-2026", "R123")
	if a != b {
		t.Fatalf("key must be deterministic: %q vs %q", a, b)
	}
	if a != "adph-2026-r123.png" {
		t.Fatalf("unexpected key: %q", a)
	}

	evil := ArtifactKey("../../etc", "passwd/../x")
	if evil != "etc-passwdx.png" {
		t.Fatalf("path characters must be stripped, got %q", evil)
	}
}
