package services

import (
	"errors"
	"strings"
)

// Kind classifies a thumbnail generation failure
type Kind string

const (
	KindCredentialMissing Kind = "credential_missing"
	KindRemoteCallFailed  Kind = "remote_call_failed"
	KindNoImageReturned   Kind = "no_image_returned"
	KindEmptyImageData    Kind = "empty_image_data"
)

// Problem is the user-facing class of a failure
type Problem string

const (
	ProblemCredential Problem = "credential"
	ProblemGeneric    Problem = "generic"
)

// credentialMarkers are lower-cased provider message fragments that mean the API key is missing,
// invalid or lacks access.
var credentialMarkers = []string{
	"permission denied",
	"entity was not found",
	"api key not valid",
	"api_key environment variable not set",
}

// GenerationError is returned by ThumbnailService.Generate. Error() is the
// underlying message unchanged, so provider text reaches the user as-is.
type GenerationError struct {
	Kind Kind
	Err  error
}

func (e *GenerationError) Error() string {
	return e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Problem maps the error kind (and, for remote failures, the provider message) to a Problem.
func (e *GenerationError) Problem() Problem {
	switch e.Kind {
	case KindCredentialMissing:
		return ProblemCredential
	case KindRemoteCallFailed:
		return classifyMessage(e.Err.Error())
	default:
		return ProblemGeneric
	}
}

// Classify returns the Problem for any error. Errors that are not GenerationErrors
// fall back to message matching.
func Classify(err error) Problem {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Problem()
	}
	if err == nil {
		return ProblemGeneric
	}
	return classifyMessage(err.Error())
}

func classifyMessage(msg string) Problem {
	msg = strings.ToLower(msg)
	for _, marker := range credentialMarkers {
		if strings.Contains(msg, marker) {
			return ProblemCredential
		}
	}
	return ProblemGeneric
}

// KindOf returns the Kind of err, or "" when err is not a GenerationError.
func KindOf(err error) Kind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}
