// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a raw evidence record as emitted by a collector, before
// normalization. Ref preserves the collector-supplied identifier
// (e.g. "E1", a PubMed PMID, or an NCT number); it is used only for
// URL reconstruction and never becomes the item id.
type Record struct {
	Ref                string   `json:"id" yaml:"id"`
	Source             string   `json:"source" yaml:"source"`
	Title              string   `json:"title" yaml:"title"`
	URL                string   `json:"url" yaml:"url"`
	Quote              string   `json:"quote" yaml:"quote"`
	Year               int      `json:"year" yaml:"year"`
	Tags               []string `json:"tags" yaml:"tags"`
	SupportedQuestions []string `json:"supported_questions" yaml:"supported_questions"`
	Section            string   `json:"section" yaml:"section"`
}

// Batch is one collector's raw output for a single section.
type Batch struct {
	Section string   `json:"section" yaml:"section"`
	Records []Record `json:"evidence" yaml:"evidence"`
}

// DecodeBatch normalizes a collector payload into a Batch. Collectors
// are non-deterministic and loosely typed, so several payload shapes
// are accepted:
//
//   - a batch object: {"section": ..., "evidence": [...]}
//   - a bare list of records: [...]
//   - either of the above wrapped under the section name
//   - any of the above fenced in markdown code blocks
//
// Records missing a section inherit the batch section. A payload that
// matches none of these shapes is an error; callers treat it as an
// empty batch for the round rather than aborting.
func DecodeBatch(section string, payload []byte) (Batch, error) {
	text := extractJSONPayload(string(payload))
	if text == "" {
		return Batch{}, fmt.Errorf("no JSON payload found in collector output for section %s", section)
	}

	var raw json.RawMessage = []byte(text)

	// Unwrap {"<section>": ...} envelopes, possibly nested once.
	for i := 0; i < 2; i++ {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			break
		}
		if inner, ok := wrapper[section]; ok {
			raw = inner
			continue
		}
		if inner, ok := wrapper["evidence_store_section_"+section]; ok {
			raw = inner
			continue
		}
		break
	}

	var batch Batch
	if err := json.Unmarshal(raw, &batch); err == nil && batch.Records != nil {
		return normalizeBatch(section, batch), nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err == nil {
		return normalizeBatch(section, Batch{Records: records}), nil
	}

	return Batch{}, fmt.Errorf("collector output for section %s does not match any known batch shape", section)
}

func normalizeBatch(section string, batch Batch) Batch {
	batch.Section = section
	for i := range batch.Records {
		if batch.Records[i].Section == "" {
			batch.Records[i].Section = section
		}
	}
	return batch
}

// extractJSONPayload returns the JSON portion of a collector response,
// stripping markdown code fences and surrounding prose. It returns the
// substring from the first '{' or '[' to the matching end of the text.
func extractJSONPayload(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			text = strings.TrimSpace(rest[:end])
		} else {
			text = strings.TrimSpace(rest)
		}
	}

	objStart := strings.IndexAny(text, "{[")
	if objStart < 0 {
		return ""
	}
	var closer byte = '}'
	if text[objStart] == '[' {
		closer = ']'
	}
	objEnd := strings.LastIndexByte(text, closer)
	if objEnd <= objStart {
		return ""
	}
	return text[objStart : objEnd+1]
}
