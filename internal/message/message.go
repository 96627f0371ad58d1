// Package message models the queue items this consumer processes: opaque
// JSON objects carrying at minimum a `link` field with the URL to enrich.
package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// Item is one unit of work from the queue. Keys and value types are
// producer-defined; the consumer only requires `link` and optionally reads
// `name` for log identification.
type Item map[string]any

// ErrInvalidLink reports a missing or malformed link field.
var ErrInvalidLink = errors.New("invalid link")

// Decode parses a raw queue payload into an Item.
func Decode(payload string) (Item, error) {
	var item Item
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("decode payload: JSON null is not an object")
	}
	return item, nil
}

// Name returns the item's human-readable name for log lines, or "Unknown"
// when the producer did not set one.
func (m Item) Name() string {
	if name, ok := m["name"].(string); ok && name != "" {
		return name
	}
	return "Unknown"
}

// Link validates and returns the item's link field. The value must be a
// string parsing to an absolute URL with both a scheme and a host.
func (m Item) Link() (string, error) {
	raw, ok := m["link"]
	if !ok {
		return "", fmt.Errorf("%w: missing link field", ErrInvalidLink)
	}
	link, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: link is not a string", ErrInvalidLink)
	}
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidLink, link)
	}
	return link, nil
}

// Merge combines the original item with its enrichment. The merge is
// shallow and right-biased: on key collision the enrichment value wins.
// Neither input is modified.
func Merge(original, enrichment Item) Item {
	merged := make(Item, len(original)+len(enrichment))
	for k, v := range original {
		merged[k] = v
	}
	for k, v := range enrichment {
		merged[k] = v
	}
	return merged
}

// Encode serializes a record for storage. Non-ASCII text is written
// verbatim and HTML characters are not escaped, so stored objects match
// the producer's payload byte-for-byte where keys did not collide.
func Encode(record Item) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	// json.Encoder terminates the stream with a newline we don't want in
	// the stored object.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
