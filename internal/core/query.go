package core

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10

	// NegativePerPage replaces a negative per_page.
	NegativePerPage = 20
)

type (
	// ListFilter selects and paginates transactions. Month 0 means any month.
	ListFilter struct {
		Search  string
		Month   int
		Page    int
		PerPage int
	}

	// TransactionPage is one page of a listing plus the total match count.
	TransactionPage struct {
		Transactions []Transaction
		Total        int64
	}
)

// Normalize clamps out-of-range paging instead of rejecting it: a page
// below 1 becomes 1 and a negative per_page becomes NegativePerPage.
// A per_page of 0 is kept and selects no rows.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PerPage < 0 {
		f.PerPage = NegativePerPage
	}
	return f
}

// Validate expects a normalized filter.
func (f ListFilter) Validate() error {
	if f.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidArgument, f.Page)
	}
	if f.PerPage < 0 {
		return fmt.Errorf("%w: per_page must not be negative, got %d", ErrInvalidArgument, f.PerPage)
	}
	if f.Month != 0 && !ValidMonth(f.Month) {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrInvalidArgument, f.Month)
	}
	return nil
}

// ParseNumericSearch returns the price a search term names when the term is
// made only of decimal digits. Digits of any script count, so "١٥٠" is 150.
// Terms with a sign, a decimal point or other characters never match.
func ParseNumericSearch(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	ascii := make([]byte, 0, len(s))
	for _, r := range s {
		d, ok := digitValue(r)
		if !ok {
			return 0, false
		}
		ascii = append(ascii, byte('0'+d))
	}
	// Out of range terms parse to +Inf, which matches no price.
	v, err := strconv.ParseFloat(string(ascii), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// IsNumericSearch reports whether the search term is also compared
// against the price column.
func IsNumericSearch(s string) bool {
	_, ok := ParseNumericSearch(s)
	return ok
}

// digitValue returns the value of a decimal digit (category Nd). Nd code
// points are allocated in contiguous runs of ten starting at zero.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return int(r-start) % 10, true
}

// Offset returns the zero-based row offset of the page and false when the
// offset does not fit in an int64.
func (f ListFilter) Offset() (int64, bool) {
	page := int64(f.Page - 1)
	per := int64(f.PerPage)
	if page == 0 {
		return 0, true
	}
	if per > 0 && page > (1<<63-1)/per {
		return 0, false
	}
	return page * per, true
}

// TotalPages returns how many pages of PerPage cover total rows.
// A per_page of 0 has no pages.
func (f ListFilter) TotalPages(total int64) int64 {
	if f.PerPage < 1 || total <= 0 {
		return 0
	}
	per := int64(f.PerPage)
	return (total + per - 1) / per
}
