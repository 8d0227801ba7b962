package metalsim

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-01-15", want: NewDate(2024, time.January, 15)},
		{in: "2024-1-5", want: NewDate(2024, time.January, 5)},
		{in: " 2024-01-15 ", want: NewDate(2024, time.January, 15)},
		{in: "15/01/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDate(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.January, 31)

	if got := d.Add(1); got != NewDate(2024, time.February, 1) {
		t.Errorf("Add(1) = %s", got)
	}
	if got := d.AddMonth(1); got != NewDate(2024, time.March, 2) {
		// time.Date normalization: Feb 31 becomes Mar 2 on a leap year.
		t.Errorf("AddMonth(1) = %s", got)
	}
	if got := NewDate(2024, time.February, 1).Sub(NewDate(2024, time.January, 1)); got != 31 {
		t.Errorf("Sub() = %d, want 31", got)
	}
	if !NewDate(2024, time.January, 1).Before(d) {
		t.Error("Before() = false, want true")
	}
}

func TestHistoryLookups(t *testing.T) {
	h := &History[float64]{}
	h.Append(MustParse("2024-01-10"), 10)
	h.Append(MustParse("2024-01-20"), 20)
	h.Append(MustParse("2024-01-15"), 15) // out of order append
	h.Append(MustParse("2024-01-15"), 16) // overwrite

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	testCases := []struct {
		name   string
		day    string
		asOf   float64
		asOfOK bool
		from   float64
		fromOK bool
	}{
		{name: "before history", day: "2024-01-01", asOfOK: false, from: 10, fromOK: true},
		{name: "exact hit", day: "2024-01-15", asOf: 16, asOfOK: true, from: 16, fromOK: true},
		{name: "between points", day: "2024-01-17", asOf: 16, asOfOK: true, from: 20, fromOK: true},
		{name: "after history", day: "2024-02-01", asOf: 20, asOfOK: true, fromOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			on := MustParse(tc.day)
			if got, ok := h.ValueAsOf(on); ok != tc.asOfOK || (ok && got != tc.asOf) {
				t.Errorf("ValueAsOf(%s) = %v, %v; want %v, %v", on, got, ok, tc.asOf, tc.asOfOK)
			}
			if got, ok := h.ValueFrom(on); ok != tc.fromOK || (ok && got != tc.from) {
				t.Errorf("ValueFrom(%s) = %v, %v; want %v, %v", on, got, ok, tc.from, tc.fromOK)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	for _, f := range []Frequency{None, Weekly, Monthly, Quarterly} {
		got, err := ParseFrequency(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFrequency(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFrequency("fortnightly"); err == nil {
		t.Error("ParseFrequency(fortnightly) expected an error")
	}
}
