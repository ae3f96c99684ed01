package brief

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/chat"
)

type fakeCompleter struct {
	output string
	err    error
}

func (f fakeCompleter) Complete(ctx context.Context, instructions string, history []chat.Message) (string, error) {
	return f.output, f.err
}

func newParser(t *testing.T, c chat.Completer) *Parser {
	t.Helper()
	p, err := NewParser(c, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func TestParseIncompleteBriefAsksQuestion(t *testing.T) {
	p := newParser(t, fakeCompleter{output: `{
		"status": "incomplete",
		"extracted_fields": {"deliverable": "promissory note", "objectives": "raise $100,000"},
		"missing_fields": ["tone_and_style", "target_audience", "key_message"],
		"clarifying_message": "What tone should the note take, and who is the audience?"
	}`})

	res, err := p.Parse(context.Background(), "Generate promissory note with a proposed $100,000 for Washington State")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Blocked {
		t.Fatal("unexpected blocked result")
	}
	if res.ClarifyingQuestion == "" {
		t.Fatal("expected a clarifying question for missing tone and audience")
	}
	if res.Draft.Deliverable != "promissory note" {
		t.Fatalf("draft = %+v", res.Draft)
	}
	if res.Draft.Complete() {
		t.Fatal("draft must not be complete")
	}
}

func TestParseDowngradesFalseCompleteClaim(t *testing.T) {
	// The agent claims complete but tone_and_style is empty; the wrapper
	// must not trust the claim.
	p := newParser(t, fakeCompleter{output: `{
		"status": "complete",
		"extracted_fields": {
			"objectives": "drive signups",
			"target_audience": "freelancers",
			"key_message": "save an hour a day",
			"deliverable": "landing page hero",
			"tone_and_style": ""
		}
	}`})

	res, err := p.Parse(context.Background(), "whatever")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.ClarifyingQuestion == "" {
		t.Fatal("expected downgrade to incomplete with a question")
	}
	if !strings.Contains(res.ClarifyingQuestion, "tone and style") {
		t.Fatalf("question = %q", res.ClarifyingQuestion)
	}
}

func TestParseCompleteBrief(t *testing.T) {
	p := newParser(t, fakeCompleter{output: `{
		"status": "complete",
		"extracted_fields": {
			"objectives": "drive signups",
			"target_audience": "freelancers",
			"key_message": "save an hour a day",
			"deliverable": "landing page hero",
			"tone_and_style": "direct, friendly"
		}
	}`})

	res, err := p.Parse(context.Background(), "whatever")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.ClarifyingQuestion != "" || res.Blocked {
		t.Fatalf("res = %+v", res)
	}
	if !res.Draft.Complete() {
		t.Fatalf("draft incomplete: %+v", res.Draft)
	}
}

func TestParseSafetyRefusalIsBlocked(t *testing.T) {
	p := newParser(t, fakeCompleter{err: fmt.Errorf("chat: request refused: %w", domain.ErrSafetyRefused)})

	res, err := p.Parse(context.Background(), "something disallowed")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !res.Blocked {
		t.Fatal("expected blocked result")
	}
	if res.ClarifyingQuestion == "" {
		t.Fatal("blocked result must carry the refusal explanation")
	}
}

func TestParseTransientErrorPropagates(t *testing.T) {
	p := newParser(t, fakeCompleter{err: fmt.Errorf("chat: 503: %w", domain.ErrUnavailable)})
	if _, err := p.Parse(context.Background(), "text"); err == nil {
		t.Fatal("expected transient upstream error to propagate")
	}
}

func TestParseMalformedOutputFallsBackToLabelScan(t *testing.T) {
	p := newParser(t, fakeCompleter{output: "Sure! Here's what I found about your brief..."})

	res, err := p.Parse(context.Background(), "Objectives: launch buzz\nTone: playful")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.ClarifyingQuestion != "" {
		t.Fatal("fallback path must never ask a question")
	}
	if res.Draft.Objectives != "launch buzz" || res.Draft.ToneAndStyle != "playful" {
		t.Fatalf("draft = %+v", res.Draft)
	}
	// Fields the text never stated stay empty.
	if res.Draft.TargetAudience != "" || res.Draft.KeyMessage != "" {
		t.Fatalf("fallback fabricated fields: %+v", res.Draft)
	}
}

func TestScanLabels(t *testing.T) {
	text := `A spring campaign for our desk lamp.
OBJECTIVES: grow awareness
Target Audience: remote workers
Key Message: light that adapts
and follows your day
Deliverables: instagram carousel
Call to Action: preorder now`

	draft := ScanLabels(text)

	if draft.Overview != "A spring campaign for our desk lamp." {
		t.Errorf("Overview = %q", draft.Overview)
	}
	if draft.Objectives != "grow awareness" {
		t.Errorf("Objectives = %q", draft.Objectives)
	}
	if draft.TargetAudience != "remote workers" {
		t.Errorf("TargetAudience = %q", draft.TargetAudience)
	}
	if draft.KeyMessage != "light that adapts and follows your day" {
		t.Errorf("KeyMessage = %q", draft.KeyMessage)
	}
	if draft.Deliverable != "instagram carousel" {
		t.Errorf("Deliverable = %q", draft.Deliverable)
	}
	if draft.CTA != "preorder now" {
		t.Errorf("CTA = %q", draft.CTA)
	}
	if draft.ToneAndStyle != "" {
		t.Errorf("ToneAndStyle fabricated: %q", draft.ToneAndStyle)
	}
}
