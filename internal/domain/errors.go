package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidBrief   = errors.New("invalid brief")
	ErrSafetyRefused  = errors.New("safety refused")
	ErrUnavailable    = errors.New("upstream unavailable")
	ErrRateLimited    = errors.New("rate limited")
	ErrIllegalHandoff = errors.New("illegal handoff")
	ErrTaskNotDone    = errors.New("task not terminal")
)
