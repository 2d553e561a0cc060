package core

import "testing"

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1000", 100000, true},
		{"1", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-5", -500, true},
		{"-0.5", -50, true},
		{"+3", 300, true},
		{".5", 50, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"12x", 0, false},
		{"", 0, false},
		{".", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0"},
		{100, "1"},
		{100000, "1,000"},
		{500000, "5,000"},
		{123456789, "1,234,567.89"},
		{-123400, "-1,234"},
		{150, "1.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format(); got != tc.want {
			t.Fatalf("%d: expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyDecimalStringRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 100, 12345, 100000, -550} {
		s := Money{Cents: cents}.DecimalString()
		back, err := ParseAmountToCents(s)
		if err != nil || back != cents {
			t.Fatalf("%d -> %q -> %d (err=%v)", cents, s, back, err)
		}
	}
}

func TestMoneyUnits(t *testing.T) {
	if got := (Money{Cents: 150000}).Units(); got != 1500.0 {
		t.Fatalf("expected 1500.0, got %v", got)
	}
}
