package core

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestIsNumericSearch(t *testing.T) {
	cases := map[string]bool{
		"150":   true,
		"0":     true,
		"":      false,
		"15.5":  false,
		"-150":  false,
		"150a":  false,
		" 150":  false,
		"١٥٠":   true,
		"१२":    true,
		"²":     false,
		"١.٥":   false,
		"00042": true,
	}
	for in, want := range cases {
		if got := IsNumericSearch(in); got != want {
			t.Errorf("IsNumericSearch(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseNumericSearch(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"150", 150, true},
		{"00042", 42, true},
		{"١٥٠", 150, true}, // Arabic-Indic
		{"۹۹", 99, true},   // extended Arabic-Indic
		{"५००", 500, true}, // Devanagari
		{"\U0001D7D9\U0001D7D8", 10, true}, // mathematical double-struck
		{"9007199254740993", 9007199254740992, true},
		{"15.5", 0, false},
		{"-1", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumericSearch(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseNumericSearch(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	if v, ok := ParseNumericSearch(strings.Repeat("9", 400)); !ok || !math.IsInf(v, 1) {
		t.Errorf("overlong term = %v, %v; want +Inf, true", v, ok)
	}
}

func TestListFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  ListFilter
		wantErr bool
	}{
		{"defaults", ListFilter{Page: 1, PerPage: 10}, false},
		{"huge page size", ListFilter{Page: 1, PerPage: math.MaxInt32}, false},
		{"with month", ListFilter{Page: 2, PerPage: 5, Month: 12}, false},
		{"zero per page", ListFilter{Page: 1, PerPage: 0}, false},
		{"zero page", ListFilter{Page: 0, PerPage: 10}, true},
		{"negative per page", ListFilter{Page: 1, PerPage: -1}, true},
		{"month out of range", ListFilter{Page: 1, PerPage: 10, Month: 13}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestListFilterNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListFilter
		want ListFilter
	}{
		{"unchanged", ListFilter{Page: 2, PerPage: 5}, ListFilter{Page: 2, PerPage: 5}},
		{"zero page", ListFilter{Page: 0, PerPage: 10}, ListFilter{Page: 1, PerPage: 10}},
		{"negative page", ListFilter{Page: -3, PerPage: 10}, ListFilter{Page: 1, PerPage: 10}},
		{"negative per page", ListFilter{Page: 1, PerPage: -5}, ListFilter{Page: 1, PerPage: NegativePerPage}},
		{"zero per page kept", ListFilter{Page: 1, PerPage: 0}, ListFilter{Page: 1, PerPage: 0}},
		{"keeps search and month", ListFilter{Search: "x", Month: 3, Page: 0, PerPage: -1}, ListFilter{Search: "x", Month: 3, Page: 1, PerPage: NegativePerPage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got != tt.want {
				t.Fatalf("Normalize() = %+v, want %+v", got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("normalized filter should validate: %v", err)
			}
		})
	}
}

func TestListFilterOffset(t *testing.T) {
	off, ok := ListFilter{Page: 3, PerPage: 10}.Offset()
	if !ok || off != 20 {
		t.Fatalf("expected 20, got %d (ok=%v)", off, ok)
	}
	if off, ok := (ListFilter{Page: 1, PerPage: math.MaxInt}).Offset(); !ok || off != 0 {
		t.Fatalf("first page offset should be 0, got %d (ok=%v)", off, ok)
	}
	if _, ok := (ListFilter{Page: math.MaxInt, PerPage: math.MaxInt}).Offset(); ok {
		t.Fatalf("expected overflow to be reported")
	}
}

func TestListFilterTotalPages(t *testing.T) {
	f := ListFilter{Page: 1, PerPage: 10}
	for total, want := range map[int64]int64{0: 0, 1: 1, 10: 1, 11: 2, 25: 3} {
		if got := f.TotalPages(total); got != want {
			t.Errorf("TotalPages(%d) = %d, want %d", total, got, want)
		}
	}
	if got := (ListFilter{Page: 1, PerPage: 0}).TotalPages(25); got != 0 {
		t.Errorf("zero per page TotalPages = %d, want 0", got)
	}
}
