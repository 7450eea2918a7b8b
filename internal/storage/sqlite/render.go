package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arkohut/pensieve/internal/types"
)

const ocrRenderBoxLimit = 4096
const ocrVectorBoxLimit = 128

// ocrBox mirrors the canonical ocr_result array element shape. Detection is
// structural: an array of objects carrying dt_boxes/rec_txt/score. Unknown
// shapes pass through untouched.
type ocrBox struct {
	DtBoxes json.RawMessage `json:"dt_boxes"`
	RecTxt  string          `json:"rec_txt"`
	Score   float64         `json:"score"`
}

// renderMetadataValue is the FTS `render` function: identity, except for
// ocr_result, which is decoded into a whitespace-joined concatenation of
// rec_txt fragments (bounded by limit boxes) when it parses as the
// canonical shape. Malformed JSON falls back to the raw string; valid but
// non-canonical JSON is pretty-printed.
func renderMetadataValue(key, value string, limit int) string {
	if key != types.MetadataKeyOCRResult {
		return value
	}

	var boxes []ocrBox
	if err := json.Unmarshal([]byte(value), &boxes); err != nil {
		if !json.Valid([]byte(value)) {
			return value
		}
		var generic interface{}
		if err := json.Unmarshal([]byte(value), &generic); err != nil {
			return value
		}
		pretty, err := json.MarshalIndent(generic, "", "  ")
		if err != nil {
			return value
		}
		return string(pretty)
	}

	if len(boxes) > limit {
		boxes = boxes[:limit]
	}
	parts := make([]string, 0, len(boxes))
	for _, b := range boxes {
		if b.RecTxt != "" {
			parts = append(parts, b.RecTxt)
		}
	}
	return strings.Join(parts, " ")
}

// renderFTSDocument builds the three text columns stored in entities_fts:
// tags (comma+space joined, attachment order) and metadata (newline-joined
// "key: value", insertion order, with ocr_result specially decoded).
func renderFTSDocument(e *types.Entity) (tagsBlob, metadataBlob string) {
	names := make([]string, len(e.Tags))
	for i, t := range e.Tags {
		names[i] = t.Name
	}
	tagsBlob = strings.Join(names, ", ")

	lines := make([]string, 0, len(e.Metadata))
	for _, m := range e.Metadata {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Key, renderMetadataValue(m.Key, m.Value, ocrRenderBoxLimit)))
	}
	metadataBlob = strings.Join(lines, "\n")
	return tagsBlob, metadataBlob
}

// renderVectorInput builds the text handed to embed(): newline-joined
// key/value for all metadata except ocr_result and sequence, followed by a
// final ocr_result line rendered with a tighter box limit.
func renderVectorInput(e *types.Entity) string {
	lines := make([]string, 0, len(e.Metadata)+1)
	var ocrLine string
	for _, m := range e.Metadata {
		switch m.Key {
		case types.MetadataKeyOCRResult:
			ocrLine = fmt.Sprintf("%s: %s", m.Key, renderMetadataValue(m.Key, m.Value, ocrVectorBoxLimit))
		case types.MetadataKeySequence:
			// excluded
		default:
			lines = append(lines, fmt.Sprintf("%s: %s", m.Key, m.Value))
		}
	}
	if ocrLine != "" {
		lines = append(lines, ocrLine)
	}
	return strings.Join(lines, "\n")
}

// appNameOf returns the active_app metadata value, defaulting to "unknown".
func appNameOf(e *types.Entity) string {
	for _, m := range e.Metadata {
		if m.Key == types.MetadataKeyActiveApp {
			return m.Value
		}
	}
	return "unknown"
}
