package metalsim

import "testing"

func TestParseMetal(t *testing.T) {
	testCases := []struct {
		in      string
		want    Metal
		wantErr bool
	}{
		{in: "gold", want: Gold},
		{in: "Gold", want: Gold},
		{in: " silver ", want: Silver},
		{in: "au", want: Gold},
		{in: "ag", want: Silver},
		{in: "pt", want: Platinum},
		{in: "pd", want: Palladium},
		{in: "copper", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMetal(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseMetal(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("ParseMetal(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestMetalsOrder(t *testing.T) {
	want := []Metal{Gold, Silver, Platinum, Palladium}
	got := Metals()
	if len(got) != len(want) {
		t.Fatalf("Metals() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Metals()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := M(100.50, "EUR")
	b := M(24.25, "EUR")

	if got := a.Add(b).AsFloat(); got != 124.75 {
		t.Errorf("Add() = %v, want 124.75", got)
	}
	if got := a.Sub(b).AsFloat(); got != 76.25 {
		t.Errorf("Sub() = %v, want 76.25", got)
	}
	// The empty currency is weak and adopts the other side.
	if got := M(1.0, "").Add(a).Currency(); got != "EUR" {
		t.Errorf("weak currency add = %q, want EUR", got)
	}
	if M(0.0, "EUR").SignedString() != "-" {
		t.Error("SignedString(0) != -")
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(5).Fraction(); got != 0.05 {
		t.Errorf("Fraction() = %v, want 0.05", got)
	}
	if got := Percent(12.5).String(); got != "12.50%" {
		t.Errorf("String() = %q, want 12.50%%", got)
	}
	if got := Percent(-3).SignedString(); got != "-3.00%" {
		t.Errorf("SignedString() = %q, want -3.00%%", got)
	}
	if !Percent(5).Equal(5.00005) {
		t.Error("Equal() within precision = false")
	}
}
