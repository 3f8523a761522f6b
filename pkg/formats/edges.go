package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
)

// Metadata keys written by the authoring tool.
const (
	SceneEdgesKey     = "gltf_all_selected_edges"
	PrimitiveIndexKey = "gltf_primitive_index"
	LineListKey       = "line_list"
)

// Selection errors.
var (
	ErrInvalidSelection   = errors.New("invalid edge selection")
	ErrEdgesNotString     = errors.New("scene edges are not a JSON string")
	ErrNoPrimitiveIndex   = errors.New("node extras have no primitive index")
	ErrInvalidPrimitiveID = errors.New("invalid primitive index")
)

// Selection is an ordered list of stable-id pairs.
type Selection [][2]uint32

// LineList is the stand-alone selection file.
type LineList struct {
	Pairs Selection
	// Skipped counts entries that were not a pair of non-negative
	// 32-bit integers.
	Skipped int
}

// ParseLineList parses {"line_list": [[id1, id2], ...]}.
func ParseLineList(data []byte) (*LineList, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	raw, ok := doc[LineListKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrInvalidSelection, LineListKey)
	}
	pairs, skipped, err := parsePairs(raw)
	if err != nil {
		return nil, err
	}
	return &LineList{Pairs: pairs, Skipped: skipped}, nil
}

// LoadLineList reads and parses a selection file.
func LoadLineList(path string) (*LineList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading selection file: %w", err)
	}
	return ParseLineList(data)
}

// SceneSelections holds the per-primitive selections found in scene
// extras, keyed by primitive index.
type SceneSelections struct {
	Edges   map[string]Selection
	Skipped int
}

// Keys returns the primitive keys in sorted order.
func (s *SceneSelections) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.Edges))
	for k := range s.Edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the selection for a primitive key.
func (s *SceneSelections) Lookup(key string) (Selection, bool) {
	if s == nil {
		return nil, false
	}
	sel, ok := s.Edges[key]
	return sel, ok
}

// ParseSceneExtras reads the selections from scene extras. The edges are
// stored as a JSON string holding {key: [[id1, id2], ...]}. Extras
// without the edges key give an empty result. Entries that are not
// arrays are ignored.
func ParseSceneExtras(data []byte) (*SceneSelections, error) {
	out := &SceneSelections{Edges: make(map[string]Selection)}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	var extras map[string]json.RawMessage
	if err := json.Unmarshal(data, &extras); err != nil {
		return nil, fmt.Errorf("%w: scene extras: %v", ErrInvalidSelection, err)
	}
	raw, ok := extras[SceneEdgesKey]
	if !ok {
		return out, nil
	}

	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, ErrEdgesNotString
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(inner), &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSelection, SceneEdgesKey, err)
	}

	for key, value := range entries {
		pairs, skipped, err := parsePairs(value)
		if err != nil {
			continue
		}
		out.Edges[key] = pairs
		out.Skipped += skipped
	}
	return out, nil
}

// EncodeSceneExtras is the inverse of ParseSceneExtras.
func EncodeSceneExtras(edges map[string]Selection) ([]byte, error) {
	inner, err := json.Marshal(edges)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{SceneEdgesKey: string(inner)})
}

// PrimitiveKey returns the selection key stored in node extras. Integer
// values are formatted in decimal; string values are used as is.
func PrimitiveKey(nodeExtras []byte) (string, error) {
	var extras map[string]json.RawMessage
	if len(bytes.TrimSpace(nodeExtras)) == 0 {
		return "", ErrNoPrimitiveIndex
	}
	if err := json.Unmarshal(nodeExtras, &extras); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPrimitiveID, err)
	}
	raw, ok := extras[PrimitiveIndexKey]
	if !ok {
		return "", ErrNoPrimitiveIndex
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	if n, ok := parseID(raw); ok {
		return strconv.FormatUint(uint64(n), 10), nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidPrimitiveID, raw)
}

// parsePairs decodes an array of pairs, skipping malformed entries.
func parsePairs(raw json.RawMessage) (Selection, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}

	pairs := make(Selection, 0, len(items))
	skipped := 0
	for _, item := range items {
		var pair []json.RawMessage
		if err := json.Unmarshal(item, &pair); err != nil || len(pair) != 2 {
			skipped++
			continue
		}
		a, okA := parseID(pair[0])
		b, okB := parseID(pair[1])
		if !okA || !okB {
			skipped++
			continue
		}
		pairs = append(pairs, [2]uint32{a, b})
	}
	return pairs, skipped, nil
}

// parseID accepts a JSON integer in the uint32 range.
func parseID(raw json.RawMessage) (uint32, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}
