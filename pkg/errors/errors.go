package errors

import (
	"github.com/pingcap/errors"
)

// errors
var (
	ErrInvalidArgument = errors.Normalize(
		"invalid argument: %s",
		errors.RFCCodeText("DW:ErrInvalidArgument"),
	)
	ErrResourceAccess = errors.Normalize(
		"failed to read query source '%s'",
		errors.RFCCodeText("DW:ErrResourceAccess"),
	)
	ErrAuthenticationFailure = errors.Normalize(
		"unable to authenticate with %s, please check the credentials",
		errors.RFCCodeText("DW:ErrAuthenticationFailure"),
	)
	ErrClientInit = errors.Normalize(
		"failed to create %s client",
		errors.RFCCodeText("DW:ErrClientInit"),
	)
	ErrPreconditionFailed = errors.Normalize(
		"precondition failed: %s",
		errors.RFCCodeText("DW:ErrPreconditionFailed"),
	)
	ErrRemoteJob = errors.Normalize(
		"job %s completed with error",
		errors.RFCCodeText("DW:ErrRemoteJob"),
	)
	ErrTransportFault = errors.Normalize(
		"failed to communicate with %s",
		errors.RFCCodeText("DW:ErrTransportFault"),
	)
	ErrInterrupted = errors.Normalize(
		"interrupted before all jobs finished",
		errors.RFCCodeText("DW:ErrInterrupted"),
	)
)

// WrapError generates a new error based on given `*errors.Error`, wraps the err
// as cause error.
// If given `err` is nil, returns a nil error, which a the different behavior
// against `Wrap` function in pingcap/errors.
func WrapError(rfcError *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcError.Wrap(err).GenWithStackByArgs(args...)
}

// Is reports whether any error in err's chain carries the same RFC code as
// rfcError. Both Cause() and Unwrap() chains are followed.
func Is(err error, rfcError *errors.Error) bool {
	for err != nil {
		if e, ok := err.(*errors.Error); ok && e.RFCCode() == rfcError.RFCCode() {
			return true
		}
		var next error
		switch x := err.(type) {
		case interface{ Cause() error }:
			next = x.Cause()
		case interface{ Unwrap() error }:
			next = x.Unwrap()
		}
		if next == err {
			return false
		}
		err = next
	}
	return false
}
