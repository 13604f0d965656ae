// Package http exposes the transaction listing and statistics over HTTP.
//
// This file turns query strings into validated domain parameters. Every
// failure wraps core.ErrInvalidArgument.
package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"salestats/internal/core"
)

// ParseMonth reads the required month parameter.
func ParseMonth(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return 0, fmt.Errorf("%w: month is required", core.ErrInvalidArgument)
	}
	m, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: month %q is not an integer", core.ErrInvalidArgument, v)
	}
	if !core.ValidMonth(m) {
		return 0, fmt.Errorf("%w: month must be between 1 and 12, got %d", core.ErrInvalidArgument, m)
	}
	return m, nil
}

// ParseListFilter reads search, page, per_page and the optional month.
// Absent values take their defaults. Integers outside the paging range are
// clamped by core.ListFilter.Normalize; only unparsable values fail.
func ParseListFilter(query url.Values, defaultPerPage int) (core.ListFilter, error) {
	if defaultPerPage < 1 {
		defaultPerPage = core.DefaultPerPage
	}
	f := core.ListFilter{
		Search:  query.Get("search"),
		Page:    core.DefaultPage,
		PerPage: defaultPerPage,
	}

	var err error
	if f.Page, err = intParam(query, "page", f.Page); err != nil {
		return core.ListFilter{}, err
	}
	if f.PerPage, err = intParam(query, "per_page", f.PerPage); err != nil {
		return core.ListFilter{}, err
	}
	if f.Month, err = intParam(query, "month", 0); err != nil {
		return core.ListFilter{}, err
	}
	if strings.TrimSpace(query.Get("month")) != "" && !core.ValidMonth(f.Month) {
		return core.ListFilter{}, fmt.Errorf("%w: month must be between 1 and 12, got %d", core.ErrInvalidArgument, f.Month)
	}

	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return core.ListFilter{}, err
	}
	return f, nil
}

func intParam(query url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", core.ErrInvalidArgument, name, v)
	}
	return n, nil
}
