package domain

import "errors"

var (
	ErrEmptyResult      = errors.New("timeseries is empty after normalization")
	ErrWindowTooLarge   = errors.New("timeseries window exceeds the maximum")
	ErrInvalidSymbolSet = errors.New("no valid currency symbols after sanitation")
)
