package interlink

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Shape is the top-level layout a backend response was recognised as.
type Shape int

const (
	// ShapeUnrecognized covers invalid JSON and any layout not listed below.
	ShapeUnrecognized Shape = iota
	// ShapeSuggestionsObject is {"suggestions":[...]}.
	ShapeSuggestionsObject
	// ShapeBareArray is [...].
	ShapeBareArray
	// ShapeInterlinkingObject is {"interlinkingSuggestions":[...]}.
	ShapeInterlinkingObject
)

func (s Shape) String() string {
	switch s {
	case ShapeSuggestionsObject:
		return "suggestions_object"
	case ShapeBareArray:
		return "bare_array"
	case ShapeInterlinkingObject:
		return "interlinking_object"
	default:
		return "unrecognized"
	}
}

// Recognized reports whether the response matched a known layout.
func (s Shape) Recognized() bool {
	return s != ShapeUnrecognized
}

type rawItem map[string]json.RawMessage

type decodedResponse struct {
	shape Shape
	items []rawItem
}

// decodeResponse classifies raw into exactly one Shape. Array elements that
// are not objects are dropped.
func decodeResponse(raw string) decodedResponse {
	body := extractJSON(raw)
	if body == "" {
		return decodedResponse{shape: ShapeUnrecognized}
	}

	if body[0] == '[' {
		if items, ok := decodeItems(json.RawMessage(body)); ok {
			return decodedResponse{shape: ShapeBareArray, items: items}
		}
		return decodedResponse{shape: ShapeUnrecognized}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return decodedResponse{shape: ShapeUnrecognized}
	}
	if items, ok := decodeItems(envelope["suggestions"]); ok {
		return decodedResponse{shape: ShapeSuggestionsObject, items: items}
	}
	if items, ok := decodeItems(envelope["interlinkingSuggestions"]); ok {
		return decodedResponse{shape: ShapeInterlinkingObject, items: items}
	}
	return decodedResponse{shape: ShapeUnrecognized}
}

func decodeItems(raw json.RawMessage) ([]rawItem, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, false
	}
	items := make([]rawItem, 0, len(elements))
	for _, element := range elements {
		element = bytes.TrimSpace(element)
		if len(element) == 0 || element[0] != '{' {
			continue
		}
		var item rawItem
		if err := json.Unmarshal(element, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, true
}

// extractJSON returns the first JSON value in raw. A markdown fence with any
// language tag is unwrapped, and prose before or after the value is ignored.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if _, after, fenced := strings.Cut(s, "```"); fenced {
		s = strings.TrimLeftFunc(after, unicode.IsLetter)
		if body, _, closed := strings.Cut(s, "```"); closed {
			s = body
		}
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	var value json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&value); err != nil {
		return ""
	}
	return string(value)
}

// parseSuggestions maps a response into suggestions. Unknown shapes give nil.
func parseSuggestions(raw string) ([]Suggestion, Shape) {
	decoded := decodeResponse(raw)
	if !decoded.shape.Recognized() {
		return nil, decoded.shape
	}
	out := make([]Suggestion, 0, len(decoded.items))
	for _, item := range decoded.items {
		out = append(out, item.suggestion())
	}
	return out, decoded.shape
}

// parseBidirectional maps a response into cross-corpus suggestions.
func parseBidirectional(raw string) ([]BidirectionalSuggestion, Shape) {
	decoded := decodeResponse(raw)
	if !decoded.shape.Recognized() {
		return nil, decoded.shape
	}
	out := make([]BidirectionalSuggestion, 0, len(decoded.items))
	for _, item := range decoded.items {
		out = append(out, item.bidirectional())
	}
	return out, decoded.shape
}

func (it rawItem) suggestion() Suggestion {
	return Suggestion{
		ContentID:           it.intField("contentId", "id"),
		ContentType:         ContentType(it.stringField("contentType", "type")),
		Title:               it.stringField("title"),
		RelevanceScore:      clamp(it.floatField("relevanceScore"), 0, 100),
		AnchorText:          it.stringField("anchorText"),
		ContextRelevance:    it.stringField("contextRelevance"),
		SemanticSimilarity:  clamp(it.floatField("semanticSimilarity"), 0, 1),
		UserIntentAlignment: clamp(it.floatField("userIntentAlignment"), 0, 1),
		SEOImpact:           clamp(it.floatField("seoImpact"), 0, 1),
		Preview:             it.stringField("preview"),
	}
}

func (it rawItem) bidirectional() BidirectionalSuggestion {
	out := BidirectionalSuggestion{
		Suggestion:    it.suggestion(),
		SourceID:      it.intField("sourceId"),
		SourceType:    ContentType(it.stringField("sourceType")),
		SourceTitle:   it.stringField("sourceTitle"),
		TargetID:      it.intField("targetId"),
		TargetType:    ContentType(it.stringField("targetType")),
		TargetTitle:   it.stringField("targetTitle"),
		Bidirectional: it.boolField("bidirectional"),
	}
	out.ContentID = out.TargetID
	out.ContentType = out.TargetType
	if out.Title == "" {
		out.Title = out.TargetTitle
	}
	return out
}

// lookup returns the first present, non-null field among keys.
func (it rawItem) lookup(keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		raw, ok := it[key]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		return raw, true
	}
	return nil, false
}

func (it rawItem) stringField(keys ...string) string {
	raw, ok := it.lookup(keys...)
	if !ok || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// floatField accepts JSON numbers and numeric strings; anything else is 0.
func (it rawItem) floatField(keys ...string) float64 {
	raw, ok := it.lookup(keys...)
	if !ok {
		return 0
	}
	var n float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		n = parsed
	} else if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

func (it rawItem) intField(keys ...string) int64 {
	n := it.floatField(keys...)
	if n >= math.MaxInt64 || n <= math.MinInt64 {
		return 0
	}
	return int64(n)
}

func (it rawItem) boolField(keys ...string) bool {
	raw, ok := it.lookup(keys...)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.Trim(string(raw), `"`)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
