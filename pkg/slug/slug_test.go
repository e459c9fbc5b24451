package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Climate", "climate"},
		{"spaces to hyphens", "Climate Policy", "climate-policy"},
		{"collapses runs", "Climate   Policy", "climate-policy"},
		{"underscores", "climate_policy", "climate-policy"},
		{"mixed separators", "climate - _policy", "climate-policy"},
		{"drops punctuation", "What's next?", "whats-next"},
		{"trims edges", "  climate  ", "climate"},
		{"trailing separators", "climate---", "climate"},
		{"leading separators", "---climate", "climate"},
		{"digits kept", "Q2 Review 2026", "q2-review-2026"},
		{"empty", "", ""},
		{"only punctuation", "?!.", ""},
		{"already a slug", "climate-policy", "climate-policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.input); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMakeDeterministic(t *testing.T) {
	// Same title must always resolve to the same discussion.
	for i := 0; i < 3; i++ {
		if got := Make("Climate Policy"); got != "climate-policy" {
			t.Fatalf("Make not deterministic: %q", got)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"climate", true},
		{"climate-policy", true},
		{"q2-2026", true},
		{"", false},
		{"Climate", false},
		{"climate policy", false},
		{"climate-", false},
		{"-climate", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.input); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
