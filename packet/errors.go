package packet

import (
	"errors"
	"fmt"
)

// Class classifies a VideoError for retry/escalation decisions, mirroring
// the Transient/Invalid/Fatal split used across the rest of this module
// (adapted from C360Studio's errors.ErrorClass pattern onto this module's
// own Kind taxonomy rather than string-pattern matching).
type Class int

const (
	ClassTransient Class = iota
	ClassInvalid
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassInvalid:
		return "invalid"
	case ClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Kind enumerates the video error taxonomy from spec.md §7.
type Kind int

const (
	KindStreamInitializationError Kind = iota
	KindFrameGenerationError
	KindAsioError
	KindEndOfStreamError
	KindFrameNotReadyError
)

func (k Kind) String() string {
	switch k {
	case KindStreamInitializationError:
		return "stream_initialization_error"
	case KindFrameGenerationError:
		return "frame_generation_error"
	case KindAsioError:
		return "asio_error"
	case KindEndOfStreamError:
		return "end_of_stream_error"
	case KindFrameNotReadyError:
		return "frame_not_ready_error"
	default:
		return "unknown_video_error"
	}
}

func (k Kind) class() Class {
	switch k {
	case KindStreamInitializationError:
		return ClassFatal
	case KindFrameGenerationError:
		return ClassTransient
	case KindAsioError:
		return ClassTransient
	case KindEndOfStreamError:
		return ClassInvalid
	case KindFrameNotReadyError:
		return ClassTransient
	default:
		return ClassTransient
	}
}

// VideoError is the boundary error type described in spec.md §6/§7.
type VideoError struct {
	Kind      Kind
	Component string
	Operation string
	Err       error
}

func (e *VideoError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s.%s: %s", e.Component, e.Operation, e.Kind)
	}
	return fmt.Sprintf("%s.%s: %s: %v", e.Component, e.Operation, e.Kind, e.Err)
}

func (e *VideoError) Unwrap() error { return e.Err }

// Class reports the retry classification for this error.
func (e *VideoError) Class() Class { return e.Kind.class() }

// Wrap builds a VideoError of the given kind with component/operation
// context, following this module's "component.operation: kind: err" wrapping
// convention (grounded on C360Studio-semstreams/errors.Wrap).
func Wrap(kind Kind, component, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &VideoError{Kind: kind, Component: component, Operation: operation, Err: err}
}

// EndOfStream is a sentinel comparable with errors.Is for the end-of-stream
// condition when no wrapped cause exists.
var EndOfStream = &VideoError{Kind: KindEndOfStreamError}

// IsKind reports whether err (or anything it wraps) is a VideoError of kind k.
func IsKind(err error, k Kind) bool {
	var ve *VideoError
	if errors.As(err, &ve) {
		return ve.Kind == k
	}
	return false
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var ve *VideoError
	if errors.As(err, &ve) {
		return ve.Class() == ClassTransient
	}
	return false
}
