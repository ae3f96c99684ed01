package image

import (
	"regexp"
	"strings"
)

// TruncationMarker is appended whenever reduced context still had to be cut.
const TruncationMarker = " [context truncated]"

// DefaultPromptBudget is the character budget assumed for image-model prompts
// when the caller does not supply one.
const DefaultPromptBudget = 2000

var hexColorPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})\b`)

var colorWords = []string{
	"color", "colour", "palette", "hue", "shade", "tone of",
}

var finishWords = []string{
	"matte", "gloss", "glossy", "satin", "brushed", "polished", "metallic",
	"leather", "suede", "wood", "wooden", "fabric", "ceramic", "chrome",
	"steel", "velvet", "linen", "finish", "texture", "material",
}

// ReduceProductContext trims a long product-description block so it fits the
// image model's prompt budget while keeping the visually relevant parts:
// section headers, colour and hex-code references, finish/material mentions,
// and the first two sentences of each descriptive paragraph. The reduction is
// lossy but deterministic for a given input and budget. If the reduced text
// still exceeds the budget it is hard-truncated and marked.
func ReduceProductContext(text string, budget int) string {
	if budget <= 0 {
		budget = DefaultPromptBudget
	}
	text = strings.TrimSpace(text)
	if len(text) <= budget {
		return text
	}

	var kept []string
	for _, para := range strings.Split(text, "\n\n") {
		lines := strings.Split(para, "\n")
		var rest []string
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			switch {
			case isSectionHeader(trimmed):
				kept = append(kept, trimmed)
			case mentionsColor(trimmed), mentionsFinish(trimmed):
				kept = append(kept, trimmed)
			default:
				rest = append(rest, trimmed)
			}
		}
		if len(rest) > 0 {
			if lead := leadingSentences(strings.Join(rest, " "), 2); lead != "" {
				kept = append(kept, lead)
			}
		}
	}

	reduced := strings.Join(kept, "\n")
	if len(reduced) <= budget {
		return reduced
	}
	cut := budget - len(TruncationMarker)
	if cut < 0 {
		cut = 0
	}
	return reduced[:cut] + TruncationMarker
}

// isSectionHeader recognizes lines that introduce a product section: short
// lines ending in a colon, or markdown-style headings.
func isSectionHeader(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	return len(line) <= 64 && strings.HasSuffix(line, ":")
}

func mentionsColor(line string) bool {
	if hexColorPattern.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, w := range colorWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func mentionsFinish(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range finishWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// leadingSentences returns the first n sentences of the paragraph, splitting
// on terminal punctuation.
func leadingSentences(paragraph string, n int) string {
	count := 0
	for i := 0; i < len(paragraph); i++ {
		switch paragraph[i] {
		case '.', '!', '?':
			// Swallow runs of punctuation ("..." counts once).
			for i+1 < len(paragraph) && (paragraph[i+1] == '.' || paragraph[i+1] == '!' || paragraph[i+1] == '?') {
				i++
			}
			count++
			if count >= n {
				return strings.TrimSpace(paragraph[:i+1])
			}
		}
	}
	return strings.TrimSpace(paragraph)
}
