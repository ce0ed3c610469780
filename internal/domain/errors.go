package domain

import (
	"errors"
	"fmt"
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrOutputNotFound = errors.New("output not found")

	// Download failure sentinels, always wrapped in a KindDownload error.
	ErrSourceNotFound     = errors.New("source not found")
	ErrSourceAccessDenied = errors.New("source access denied")
	ErrSizeExceeded       = errors.New("source exceeds size limit")
	ErrDownloadTimeout    = errors.New("download timed out")
)

// Kind classifies a pipeline failure for API mapping and job records.
type Kind string

const (
	KindValidation Kind = "validation"
	KindDownload   Kind = "download"
	KindTranscode  Kind = "transcode"
	KindStorage    Kind = "storage"
	KindInternal   Kind = "internal"
)

// Error is a classified pipeline failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, defaulting to KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
