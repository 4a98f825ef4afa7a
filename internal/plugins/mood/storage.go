package mood

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StoredEntry is one value of the browser-era journal blob:
//
//	{"2024-01-01": {"text": "...", "sketch": "data:image/jpeg;base64,..."}}
//
// The older form stored the text directly: {"2024-01-01": "..."}.
type StoredEntry struct {
	Text   string `json:"text"`
	Sketch string `json:"sketch,omitempty"`
}

// DecodeStore parses a journal blob. Only a blob that is not a JSON object
// is an error; a value of the wrong shape decodes to an empty entry.
func DecodeStore(raw []byte) (map[string]StoredEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]StoredEntry{}, nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decoding journal blob: %w", err)
	}

	out := make(map[string]StoredEntry, len(values))
	for date, v := range values {
		out[date] = decodeValue(v)
	}
	return out, nil
}

func decodeValue(v json.RawMessage) StoredEntry {
	var legacy string
	if err := json.Unmarshal(v, &legacy); err == nil {
		return StoredEntry{Text: legacy}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(v, &fields); err != nil {
		return StoredEntry{}
	}
	var e StoredEntry
	_ = json.Unmarshal(fields["text"], &e.Text)
	_ = json.Unmarshal(fields["sketch"], &e.Sketch)
	return e
}

// ParseStoredEntries returns date -> text for a journal blob. It never
// fails: malformed input yields an empty map so analytics degrade to "no
// data" instead of an error page.
func ParseStoredEntries(raw []byte) map[string]string {
	entries, err := DecodeStore(raw)
	if err != nil {
		return map[string]string{}
	}
	texts := make(map[string]string, len(entries))
	for date, e := range entries {
		texts[date] = e.Text
	}
	return texts
}

// EncodeStore writes entries in the current blob shape.
func EncodeStore(entries map[string]StoredEntry) ([]byte, error) {
	if entries == nil {
		entries = map[string]StoredEntry{}
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding journal blob: %w", err)
	}
	return b, nil
}
