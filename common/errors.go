package common

import "errors"

var (
	ErrorInvalidValue         = errors.New("invalid value")
	ErrorNonFinite            = errors.New("non-finite value")
	ErrorNoEvents             = errors.New("no event times")
	ErrorEventShape           = errors.New("event times must be T-by-1 or T-by-2, with T being the number of trials")
	ErrorInvalidWindow        = errors.New("window duration must be positive")
	ErrorInvalidJitter        = errors.New("jitter size must be positive")
	ErrorInvalidResampleCount = errors.New("resample count must not be negative")
)
