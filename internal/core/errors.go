package core

import "errors"

// Error kinds. Callers wrap the underlying cause with one of these so that
// errors.Is matches both the kind and the cause:
//
//	fmt.Errorf("%w: fetch seed: %w", core.ErrFetch, err)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrFetch           = errors.New("fetch error")
	ErrParse           = errors.New("parse error")
	ErrStore           = errors.New("store error")
)
