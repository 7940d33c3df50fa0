package avatar

import "testing"

func TestExpressionValid(t *testing.T) {
	tests := []struct {
		expr Expression
		want bool
	}{
		{Smile, true},
		{Neutral, true},
		{Expression("sleepy"), true},
		{Expression("grinning"), false},
		{Expression(""), false},
		{Expression("SMILE"), false},
	}

	for _, tt := range tests {
		if got := tt.expr.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestNamesCoversAll(t *testing.T) {
	names := Names()
	if len(names) != len(all) {
		t.Fatalf("expected %d names, got %d", len(all), len(names))
	}
	for _, n := range names {
		if !Expression(n).Valid() {
			t.Errorf("Names() returned invalid expression %q", n)
		}
	}
}
