package money

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
	}{
		// integer values
		{"30", 30_0000},
		{"30.", 30_0000},
		{"30.0", 30_0000},
		{"0", 0},
		{"0.0000", 0},

		// exact values
		{"3.1416", 3_1416},

		// missing trailing zeroes
		{"3.14", 3_1400},
		{"3.014", 3_0140},

		// exact leading/trailing zeroes
		{"3.1400", 3_1400},
		{"3.0140", 3_0140},
		{"3.0014", 3_0014},

		// representable extremes
		{"1844674407370955.1615", 18446744073709551615},
		{"1844674407370955", 18446744073709550000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrFormat},
		{".", ErrFormat},
		{".5", ErrFormat},
		{"-1", ErrFormat},
		{"-1.0", ErrFormat},
		{"+1", ErrFormat},
		{"1.2.3", ErrFormat},
		{"abc", ErrFormat},
		{"1,5", ErrFormat},
		{"1 ", ErrFormat},
		{"1e4", ErrFormat},

		// extra precision is an error, never rounded
		{"3.14159", ErrFormat},
		{"1.00001", ErrFormat},

		// out of range
		{"18446744073709551616", ErrOverflow},
		{"1844674407370956", ErrOverflow},
		{"1844674407370955.1616", ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   Amount
		want string
	}{
		{0, "0.0000"},
		{30_0000, "30.0000"},
		{3_1400, "3.1400"},
		{3_0014, "3.0014"},
		{3_1416, "3.1416"},
		{18446744073709551615, "1844674407370955.1615"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Amount(%d).String() = %q, want %q", uint64(tt.in), got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"0.0000", "1.0000", "3.1416", "10.0000", "1844674407370955.1615"} {
		a, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", s, err)
		}
		if got := a.String(); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestCheckedAdd(t *testing.T) {
	a, b := Amount(3_1416), Amount(1_4142)

	sum, err := a.CheckedAdd(b)
	if err != nil {
		t.Fatalf("CheckedAdd error: %v", err)
	}
	if sum != 4_5558 {
		t.Errorf("got %d, want 45558", sum)
	}

	if _, err := Amount(18446744073709551615).CheckedAdd(1); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestCheckedSub(t *testing.T) {
	a, b := Amount(3_1416), Amount(1_4142)

	diff, err := a.CheckedSub(b)
	if err != nil {
		t.Fatalf("CheckedSub error: %v", err)
	}
	if diff != 1_7274 {
		t.Errorf("got %d, want 17274", diff)
	}

	if _, err := b.CheckedSub(a); !errors.Is(err, ErrInsufficient) {
		t.Errorf("expected ErrInsufficient, got %v", err)
	}
}

func TestFromUnits(t *testing.T) {
	a, err := FromUnits(30)
	if err != nil {
		t.Fatalf("FromUnits error: %v", err)
	}
	if a != 30_0000 {
		t.Errorf("got %d, want 300000", a)
	}

	if _, err := FromUnits(MaxUnits + 1); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}
