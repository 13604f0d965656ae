package http

import (
	"errors"
	"net/url"
	"testing"

	"salestats/internal/core"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    int
		wantErr bool
	}{
		{"valid", url.Values{"month": {"3"}}, 3, false},
		{"padded", url.Values{"month": {" 12 "}}, 12, false},
		{"leading zero", url.Values{"month": {"03"}}, 3, false},
		{"missing", url.Values{}, 0, true},
		{"empty", url.Values{"month": {""}}, 0, true},
		{"not a number", url.Values{"month": {"march"}}, 0, true},
		{"zero", url.Values{"month": {"0"}}, 0, true},
		{"thirteen", url.Values{"month": {"13"}}, 0, true},
		{"decimal", url.Values{"month": {"3.5"}}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.query)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseMonth = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseListFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    core.ListFilter
		wantErr bool
	}{
		{
			name:  "defaults",
			query: url.Values{},
			want:  core.ListFilter{Page: 1, PerPage: 25},
		},
		{
			name:  "all values",
			query: url.Values{"search": {"ring"}, "page": {"2"}, "per_page": {"5"}, "month": {"11"}},
			want:  core.ListFilter{Search: "ring", Page: 2, PerPage: 5, Month: 11},
		},
		{
			name:  "search kept verbatim",
			query: url.Values{"search": {" 50% "}},
			want:  core.ListFilter{Search: " 50% ", Page: 1, PerPage: 25},
		},
		{
			name:  "large per_page",
			query: url.Values{"per_page": {"100000"}},
			want:  core.ListFilter{Page: 1, PerPage: 100000},
		},
		{name: "bad page", query: url.Values{"page": {"two"}}, wantErr: true},
		{name: "bad per_page", query: url.Values{"per_page": {"1.5"}}, wantErr: true},
		{
			name:  "zero page clamps to first",
			query: url.Values{"page": {"0"}},
			want:  core.ListFilter{Page: 1, PerPage: 25},
		},
		{
			name:  "negative page clamps to first",
			query: url.Values{"page": {"-1"}},
			want:  core.ListFilter{Page: 1, PerPage: 25},
		},
		{
			name:  "negative per_page uses fallback",
			query: url.Values{"per_page": {"-5"}},
			want:  core.ListFilter{Page: 1, PerPage: core.NegativePerPage},
		},
		{
			name:  "zero per_page kept",
			query: url.Values{"per_page": {"0"}},
			want:  core.ListFilter{Page: 1, PerPage: 0},
		},
		{name: "month out of range", query: url.Values{"month": {"0"}}, wantErr: true},
		{name: "month not a number", query: url.Values{"month": {"x"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseListFilter(tt.query, 25)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseListFilter = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseListFilterFallbackPerPage(t *testing.T) {
	got, err := ParseListFilter(url.Values{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PerPage != core.DefaultPerPage {
		t.Errorf("PerPage = %d, want %d", got.PerPage, core.DefaultPerPage)
	}
}
