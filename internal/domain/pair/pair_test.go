package pair

import "testing"

func TestCanonicalOrdersSmallerFirst(t *testing.T) {
	tests := []struct {
		name  string
		a, b  int64
		wantA int64
		wantB int64
	}{
		{name: "already ordered", a: 1, b: 2, wantA: 1, wantB: 2},
		{name: "reversed", a: 9, b: 4, wantA: 4, wantB: 9},
		{name: "equal", a: 7, b: 7, wantA: 7, wantB: 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotA, gotB := Canonical(tc.a, tc.b)
			if gotA != tc.wantA || gotB != tc.wantB {
				t.Fatalf("unexpected canonical order: got (%d, %d) want (%d, %d)", gotA, gotB, tc.wantA, tc.wantB)
			}
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		want bool
	}{
		{name: "valid", a: 1, b: 2, want: true},
		{name: "self pair", a: 3, b: 3, want: false},
		{name: "zero user", a: 0, b: 2, want: false},
		{name: "negative user", a: 1, b: -5, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Valid(tc.a, tc.b); got != tc.want {
				t.Fatalf("Valid(%d, %d) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCounterpart(t *testing.T) {
	if got := Counterpart(1, 1, 2); got != 2 {
		t.Fatalf("unexpected counterpart: got %d want 2", got)
	}
	if got := Counterpart(2, 1, 2); got != 1 {
		t.Fatalf("unexpected counterpart: got %d want 1", got)
	}
}
