package core

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

const (
	// DefaultRemoveAttempts bounds how often a busy directory is retried
	DefaultRemoveAttempts = 5
	// DefaultRemoveBackoff is the base unit of the linear backoff
	DefaultRemoveBackoff = 200 * time.Millisecond
)

// Remover deletes directory trees, retrying while the filesystem reports
// the tree as busy. The zero value is not usable; call NewRemover.
type Remover struct {
	MaxAttempts int
	Delay       func(attempt int) time.Duration
	Retryable   func(err error) bool
	RemoveAll   func(path string) error
	Sleep       func(d time.Duration)
}

// NewRemover returns a Remover with the default policy: five attempts,
// attempt x 200ms between them, only EBUSY retried.
func NewRemover() *Remover {
	return &Remover{
		MaxAttempts: DefaultRemoveAttempts,
		Delay:       LinearBackoff(DefaultRemoveBackoff),
		Retryable:   IsBusy,
		RemoveAll:   os.RemoveAll,
		Sleep:       time.Sleep,
	}
}

// LinearBackoff returns a delay function growing by base for every attempt.
func LinearBackoff(base time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			return 0
		}
		return time.Duration(attempt) * base
	}
}

// IsBusy reports whether err is the "resource busy" class of failure.
// Other transient conditions are deliberately not retried.
func IsBusy(err error) bool {
	return errors.Is(err, syscall.EBUSY)
}

// Remove deletes path and everything below it. A missing path is not an
// error, so Remove may be called again on an already removed directory.
func (r *Remover) Remove(path string) error {
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return nil
	}

	maxAttempts := r.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := r.RemoveAll(path)
		if err == nil {
			return nil
		}
		if !r.Retryable(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		lastErr = err
		if attempt < maxAttempts {
			r.Sleep(r.Delay(attempt))
		}
	}

	return &RemoveRetryError{Path: path, Attempts: maxAttempts, Last: lastErr}
}
