package image

import (
	"strings"
	"testing"
)

const sampleContext = `Aurora Desk Lamp:
The Aurora desk lamp pairs a brushed aluminium stem with a matte ceramic base.
It was designed over eighteen months by a distributed team. Reviews were frequent. The project went through eleven design reviews before the final revision was approved for tooling.
Primary body color #2E3A4F with accent ring in #F2C14E.

Packaging:
Ships in a recycled cardboard sleeve. Print was sourced in Porto. The procurement process involved three competing bids and a factory visit over many months.`

func TestReduceProductContextKeepsVisualLines(t *testing.T) {
	got := ReduceProductContext(sampleContext, 400)

	for _, want := range []string{
		"Aurora Desk Lamp:",
		"#2E3A4F",
		"brushed aluminium",
		"Packaging:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("reduced context missing %q:\n%s", want, got)
		}
	}
	for _, drop := range []string{"eleven design reviews", "three competing bids"} {
		if strings.Contains(got, drop) {
			t.Errorf("reduced context kept non-visual trailing sentence %q:\n%s", drop, got)
		}
	}
}

func TestReduceProductContextDeterministic(t *testing.T) {
	a := ReduceProductContext(sampleContext, 300)
	b := ReduceProductContext(sampleContext, 300)
	if a != b {
		t.Fatalf("reduction is not deterministic:\n%q\n%q", a, b)
	}
}

func TestReduceProductContextHardTruncates(t *testing.T) {
	long := strings.Repeat("Primary color #AABBCC on every panel.\n", 100)
	got := ReduceProductContext(long, 200)
	if len(got) > 200 {
		t.Fatalf("reduced length %d exceeds budget 200", len(got))
	}
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Fatalf("expected truncation marker, got tail %q", got[len(got)-30:])
	}
}

func TestReduceProductContextShortInputUntouched(t *testing.T) {
	in := "Small product. Red color."
	if got := ReduceProductContext(in, 500); got != in {
		t.Fatalf("short input modified: %q", got)
	}
}
