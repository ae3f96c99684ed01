package domain

import "strings"

// CreativeBrief captures the structured form of a free-text marketing brief.
// All fields are plain text; the five critical fields must be explicitly
// stated by the caller before generation may proceed.
type CreativeBrief struct {
	Overview         string `json:"overview,omitempty"`
	Objectives       string `json:"objectives,omitempty"`
	TargetAudience   string `json:"target_audience,omitempty"`
	KeyMessage       string `json:"key_message,omitempty"`
	ToneAndStyle     string `json:"tone_and_style,omitempty"`
	Deliverable      string `json:"deliverable,omitempty"`
	Timelines        string `json:"timelines,omitempty"`
	VisualGuidelines string `json:"visual_guidelines,omitempty"`
	CTA              string `json:"cta,omitempty"`
}

// CriticalBriefFields lists the fields that must be non-empty before a brief
// is considered complete.
var CriticalBriefFields = []string{
	"objectives",
	"target_audience",
	"key_message",
	"deliverable",
	"tone_and_style",
}

// Field returns the value of the named brief field. Unknown names return "".
func (b CreativeBrief) Field(name string) string {
	switch name {
	case "overview":
		return b.Overview
	case "objectives":
		return b.Objectives
	case "target_audience":
		return b.TargetAudience
	case "key_message":
		return b.KeyMessage
	case "tone_and_style":
		return b.ToneAndStyle
	case "deliverable":
		return b.Deliverable
	case "timelines":
		return b.Timelines
	case "visual_guidelines":
		return b.VisualGuidelines
	case "cta":
		return b.CTA
	}
	return ""
}

// SetField assigns the named brief field. Unknown names are ignored.
func (b *CreativeBrief) SetField(name, value string) {
	switch name {
	case "overview":
		b.Overview = value
	case "objectives":
		b.Objectives = value
	case "target_audience":
		b.TargetAudience = value
	case "key_message":
		b.KeyMessage = value
	case "tone_and_style":
		b.ToneAndStyle = value
	case "deliverable":
		b.Deliverable = value
	case "timelines":
		b.Timelines = value
	case "visual_guidelines":
		b.VisualGuidelines = value
	case "cta":
		b.CTA = value
	}
}

// MissingCritical returns the critical fields that are empty after trimming
// whitespace, in declaration order.
func (b CreativeBrief) MissingCritical() []string {
	var missing []string
	for _, name := range CriticalBriefFields {
		if strings.TrimSpace(b.Field(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Complete reports whether every critical field is non-empty.
func (b CreativeBrief) Complete() bool {
	return len(b.MissingCritical()) == 0
}
