package domain

import (
	"errors"
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrJobNotReady    = errors.New("job is not done yet")
	ErrNotLoaded      = errors.New("job list has not loaded yet")
	ErrUnknownView    = errors.New("unknown view")
	ErrEventsDisabled = errors.New("event history is disabled")
)
