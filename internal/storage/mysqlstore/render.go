package mysqlstore

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arkohut/pensieve/internal/types"
)

const ocrRenderBoxLimit = 4096
const ocrVectorBoxLimit = 128

type ocrBox struct {
	DtBoxes json.RawMessage `json:"dt_boxes"`
	RecTxt  string          `json:"rec_txt"`
	Score   float64         `json:"score"`
}

// renderMetadataValue mirrors the sqlite provider's render function: ocr
// results get flattened to rec_txt text, everything else passes through.
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

// renderFTSDocument builds the two text blobs mirrored onto entities'
// fts_tags/fts_metadata columns, which back the FULLTEXT index.
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

func renderVectorInput(e *types.Entity) string {
	lines := make([]string, 0, len(e.Metadata)+1)
	var ocrLine string
	for _, m := range e.Metadata {
		switch m.Key {
		case types.MetadataKeyOCRResult:
			ocrLine = fmt.Sprintf("%s: %s", m.Key, renderMetadataValue(m.Key, m.Value, ocrVectorBoxLimit))
		case types.MetadataKeySequence:
		default:
			lines = append(lines, fmt.Sprintf("%s: %s", m.Key, m.Value))
		}
	}
	if ocrLine != "" {
		lines = append(lines, ocrLine)
	}
	return strings.Join(lines, "\n")
}

func appNameOf(e *types.Entity) string {
	for _, m := range e.Metadata {
		if m.Key == types.MetadataKeyActiveApp {
			return m.Value
		}
	}
	return "unknown"
}
