package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeRecognition  Code = "RECOGNITION_ERROR"
	CodeEmptyIntent  Code = "EMPTY_INTENT"
	CodeStorage      Code = "STORAGE_ERROR"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Metadata describes how a code is surfaced to the user. PublicMessage is
// what screens may show; Spoken is what the voice assistant falls back to
// when it has nothing more specific to say.
type Metadata struct {
	Retryable     bool
	PublicMessage string
	Spoken        string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:     false,
		PublicMessage: "validation failed",
		Spoken:        "Some of the details you entered look wrong. Please check and try again.",
	},
	CodeUnauthorized: {
		Retryable:     false,
		PublicMessage: "authentication required",
		Spoken:        "You need to sign in first.",
	},
	CodeNotFound: {
		Retryable:     false,
		PublicMessage: "resource not found",
		Spoken:        "I could not find that.",
	},
	CodeNetwork: {
		Retryable:     true,
		PublicMessage: "service unavailable",
		Spoken:        "I am having trouble reaching the store right now. Please try again.",
	},
	CodeRecognition: {
		Retryable:     true,
		PublicMessage: "speech not recognized",
		Spoken:        "Sorry, I didn't catch that. Please try again.",
	},
	CodeEmptyIntent: {
		Retryable:     true,
		PublicMessage: "no intent found",
		Spoken:        "Sorry, I didn't catch that. Please try again.",
	},
	CodeStorage: {
		Retryable:     false,
		PublicMessage: "local storage error",
		Spoken:        "Something went wrong saving your data.",
	},
	CodeInternal: {
		Retryable:     true,
		PublicMessage: "internal error",
		Spoken:        "Something went wrong. Please try again.",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code carried by err, or CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}
