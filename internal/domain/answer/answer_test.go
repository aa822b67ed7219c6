package answer

import (
	"strings"
	"testing"
)

func TestWordBudget(t *testing.T) {
	tests := []struct {
		tier Tier
		want int
	}{
		{Short, 200},
		{Medium, 500},
		{Long, 1000},
	}
	for _, tc := range tests {
		if got := tc.tier.WordBudget(); got != tc.want {
			t.Errorf("%s.WordBudget() = %d, want %d", tc.tier, got, tc.want)
		}
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{"", Short},
		{"s", Short},
		{"M", Medium},
		{" l ", Long},
	}
	for _, tc := range tests {
		got, err := ParseTier(tc.in)
		if err != nil {
			t.Fatalf("ParseTier(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseTier(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := ParseTier("XL"); err == nil {
		t.Error("expected error for XL")
	}
}

func TestNoResults(t *testing.T) {
	r := NoResults("Nonexistent Person", "ollama/phi3")

	if r.Verdict.Label != NonRelevant {
		t.Errorf("label = %q, want NON_RELEVANT", r.Verdict.Label)
	}
	if !strings.Contains(r.Verdict.Explanation, "Nonexistent Person") {
		t.Errorf("explanation %q does not name the author", r.Verdict.Explanation)
	}
	if !strings.Contains(r.Answer, "(Nonexistent Person)") {
		t.Errorf("answer %q does not name the author", r.Answer)
	}
	if r.Usage.TotalTokens != 0 || r.EvalUsage.TotalTokens != 0 {
		t.Error("expected zero token usage")
	}
	if r.Cost != 0 || r.ResponseTime != 0 {
		t.Error("expected zero cost and response time")
	}
	if r.ModelUsed != "ollama/phi3" {
		t.Errorf("model = %q", r.ModelUsed)
	}
}

func TestLabel_IsGraded(t *testing.T) {
	for _, l := range []Label{Relevant, PartlyRelevant, NonRelevant} {
		if !l.IsGraded() {
			t.Errorf("%s should be graded", l)
		}
	}
	if Unknown.IsGraded() || Label("relevant").IsGraded() {
		t.Error("UNKNOWN and lowercase labels are not graded")
	}
}
