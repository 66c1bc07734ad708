package memstore

import (
	"encoding/binary"
	"encoding/json"
	"math"
)

// normalizeMetadata parses a stored JSON metadata blob into a known-keys
// map. Unrecognized shapes (arrays, scalars, invalid JSON) collapse to an
// empty map rather than erroring: metadata is advisory, never load-bearing,
// and the shape check happens exactly once at the store boundary.
func normalizeMetadata(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// ContainerTags extracts the container tag set from a metadata map. Both
// the camelCase and snake_case key spellings are accepted, and the value may
// be a []string or a JSON-decoded []any; anything else yields no tags.
func ContainerTags(meta map[string]any) []string {
	if meta == nil {
		return nil
	}

	raw, ok := meta["containerTags"]
	if !ok {
		raw, ok = meta["container_tags"]
	}
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	default:
		return nil
	}
}

// TagsIntersect reports whether tags and filter share at least one element.
// An empty filter matches everything.
func TagsIntersect(tags, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	set := make(map[string]bool, len(filter))
	for _, f := range filter {
		set[f] = true
	}
	for _, t := range tags {
		if set[t] {
			return true
		}
	}
	return false
}

// encodeVector serializes an embedding as little-endian float32s.
func encodeVector(v []float32) []byte {
	if v == nil {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector deserializes a little-endian float32 blob. Returns nil for
// empty or truncated input.
func decodeVector(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

// marshalMetadata renders a metadata map for storage. A nil map stores as
// the empty object so reads never see SQL NULL.
func marshalMetadata(meta map[string]any) []byte {
	if meta == nil {
		return []byte("{}")
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return []byte("{}")
	}
	return data
}
