package brief

import (
	"strings"

	"golang.org/x/text/cases"

	"server/internal/domain"
)

// labelSynonyms maps folded field labels to canonical brief field names.
var labelSynonyms = map[string]string{
	"overview":          "overview",
	"summary":           "overview",
	"background":        "overview",
	"objective":         "objectives",
	"objectives":        "objectives",
	"goal":              "objectives",
	"goals":             "objectives",
	"target audience":   "target_audience",
	"audience":          "target_audience",
	"key message":       "key_message",
	"message":           "key_message",
	"tone and style":    "tone_and_style",
	"tone & style":      "tone_and_style",
	"tone":              "tone_and_style",
	"style":             "tone_and_style",
	"deliverable":       "deliverable",
	"deliverables":      "deliverable",
	"format":            "deliverable",
	"timeline":          "timelines",
	"timelines":         "timelines",
	"deadline":          "timelines",
	"visual guidelines": "visual_guidelines",
	"visuals":           "visual_guidelines",
	"cta":               "cta",
	"call to action":    "cta",
}

var labelFolder = cases.Fold()

// ScanLabels is the degrade-path extractor: it walks the text line by line,
// recognizes "Label: value" lines case-insensitively (tolerating synonyms),
// and fills the corresponding fields. Unlabeled leading text goes to
// overview. Fields the text never states stay empty; nothing is guessed.
func ScanLabels(text string) domain.CreativeBrief {
	var draft domain.CreativeBrief
	current := "overview"
	sawLabel := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if label, value, ok := splitLabelLine(trimmed); ok {
			current = label
			sawLabel = true
			appendField(&draft, current, value)
			continue
		}
		if !sawLabel {
			appendField(&draft, "overview", trimmed)
			continue
		}
		appendField(&draft, current, trimmed)
	}
	return draft
}

// splitLabelLine recognizes "Label: rest" where the folded label is a known
// field name or synonym.
func splitLabelLine(line string) (field, value string, ok bool) {
	head, rest, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	folded := labelFolder.String(strings.TrimSpace(head))
	field, ok = labelSynonyms[folded]
	if !ok {
		return "", "", false
	}
	return field, strings.TrimSpace(rest), true
}

func appendField(draft *domain.CreativeBrief, name, value string) {
	if value == "" {
		return
	}
	if existing := draft.Field(name); existing != "" {
		value = existing + " " + value
	}
	draft.SetField(name, value)
}
