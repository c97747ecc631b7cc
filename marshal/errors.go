package marshal

import (
	"errors"
	"fmt"

	"github.com/tsawler/go-clhost/memory"
	"github.com/tsawler/go-clhost/native"
)

// ErrorKind classifies a failure raised at the host/native boundary.
type ErrorKind string

const (
	KindArity        ErrorKind = "ArityError"
	KindArgument     ErrorKind = "KindError"
	KindTypeMismatch ErrorKind = "TypeMismatch"
	KindTagMismatch  ErrorKind = "TagMismatch"
	KindElement      ErrorKind = "ElementTypeError"
	KindNotBuffer    ErrorKind = "NotBufferLike"
	KindStatus       ErrorKind = "NativeStatusError"
)

// Error is implemented by every failure this package returns.
type Error interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first marshal Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var me Error
	if errors.As(err, &me) {
		return me.Kind(), true
	}
	return "", false
}

// ArityError reports a call made with fewer arguments than required.
type ArityError struct {
	Expected int
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("Expected %d arguments, got %d", e.Expected, e.Actual)
}

func (e *ArityError) Kind() ErrorKind { return KindArity }

// KindError reports an argument of the wrong shape at a 0-based position.
type KindError struct {
	Index    int
	Expected ArgKind
	Actual   string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("Argument %d must be %s", e.Index, e.Expected.phrase())
}

func (e *KindError) Kind() ErrorKind { return KindArgument }

// TypeMismatchError reports a value that is not a boxed handle at all.
// Index is the element position when the value came from an array, or -1.
type TypeMismatchError struct {
	Expected string
	Actual   string
	Index    int
}

func (e *TypeMismatchError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("element %d: expected %s handle, got %s", e.Index, e.Expected, e.Actual)
	}
	return fmt.Sprintf("expected %s handle, got %s", e.Expected, e.Actual)
}

func (e *TypeMismatchError) Kind() ErrorKind { return KindTypeMismatch }

// TagMismatchError reports a boxed handle of a different kind than expected.
type TagMismatchError struct {
	Expected string
	Actual   string
	Index    int
}

func (e *TagMismatchError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("element %d: expected %s handle, got %s handle", e.Index, e.Expected, e.Actual)
	}
	return fmt.Sprintf("expected %s handle, got %s handle", e.Expected, e.Actual)
}

func (e *TagMismatchError) Kind() ErrorKind { return KindTagMismatch }

// ElementTypeError reports a sequence element that cannot be represented in
// the target native scalar type.
type ElementTypeError struct {
	Index  int
	Target memory.DataType
	Reason string
}

func (e *ElementTypeError) Error() string {
	return fmt.Sprintf("element %d cannot be converted to %s: %s", e.Index, e.Target, e.Reason)
}

func (e *ElementTypeError) Kind() ErrorKind { return KindElement }

// NotBufferLikeError reports a value with no contiguous backing memory.
type NotBufferLikeError struct {
	Actual string
}

func (e *NotBufferLikeError) Error() string {
	return fmt.Sprintf("expected a buffer, got %s", e.Actual)
}

func (e *NotBufferLikeError) Kind() ErrorKind { return KindNotBuffer }

// StatusError carries a failed native status and its description.
type StatusError struct {
	Code        native.Status
	Description string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Description, int32(e.Code))
}

func (e *StatusError) Kind() ErrorKind { return KindStatus }
