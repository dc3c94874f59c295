package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// CanonicalJSON encodes s in canonical form (RFC 8785), so two runs with
// the same results produce byte-identical output.
func CanonicalJSON(s Summary) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize summary: %w", err)
	}
	return out, nil
}

// WriteJSON writes the canonical summary followed by a newline.
func WriteJSON(w io.Writer, s Summary) error {
	data, err := CanonicalJSON(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
