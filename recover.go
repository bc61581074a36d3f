package slimasync

import (
	"fmt"
	"runtime/debug"
)

// RecoveryError wraps a panic raised by callAPI or formatData together with
// the stack trace. It is delivered as the rejection reason of the Call and
// as the payload of the error action.
type RecoveryError struct {
	// PanicValue is the original value that was passed to panic().
	PanicValue any
	// StackTrace contains the full stack trace at the point of panic.
	StackTrace string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.PanicValue)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *RecoveryError) Unwrap() error {
	err, _ := e.PanicValue.(error)
	return err
}

// protect runs fn and turns a panic into a *RecoveryError.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RecoveryError{
				PanicValue: r,
				StackTrace: string(debug.Stack()),
			}
		}
	}()
	return fn()
}
