package translate

import (
	"context"
	"errors"
	"fmt"
)

// AudioDecodeError reports an empty or undecodable audio buffer. Terminal
// for the turn.
type AudioDecodeError struct {
	Err error
}

func (e *AudioDecodeError) Error() string { return fmt.Sprintf("audio decode: %v", e.Err) }
func (e *AudioDecodeError) Unwrap() error { return e.Err }

// TranscriptionError reports a failed or empty transcription. Terminal for
// the turn.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return fmt.Sprintf("transcription: %v", e.Err) }
func (e *TranscriptionError) Unwrap() error { return e.Err }

// TranslationError reports a failed translation call. Terminal for the turn.
type TranslationError struct {
	Err error
}

func (e *TranslationError) Error() string { return fmt.Sprintf("translation: %v", e.Err) }
func (e *TranslationError) Unwrap() error { return e.Err }

// SynthesisError reports a failed speech synthesis call. Terminal for the
// turn.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string { return fmt.Sprintf("synthesis: %v", e.Err) }
func (e *SynthesisError) Unwrap() error { return e.Err }

// TimeoutError reports an adapter call that exceeded its deadline.
// Terminal for the turn it affects.
type TimeoutError struct {
	Stage string
	Err   error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("%s timed out: %v", e.Stage, e.Err) }
func (e *TimeoutError) Unwrap() error { return e.Err }

// stageError wraps an adapter failure in the right taxonomy type,
// promoting deadline expiry to TimeoutError.
func stageError(stage string, err error, wrap func(error) error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Stage: stage, Err: err}
	}
	return wrap(err)
}

// promoteDeadline tags an adapter error with context.DeadlineExceeded when
// the call's context expired but the provider reported the deadline in its
// own terms (gRPC status codes, transport errors) without wrapping the
// context error. Must be called before the context is cancelled.
func promoteDeadline(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, context.DeadlineExceeded)
	}
	return err
}
