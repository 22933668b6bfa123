package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedRequest    = errors.New("malformed request")
	ErrMissingFields       = errors.New("missing required fields")
	ErrVerificationFailed  = errors.New("captcha verification failed")
	ErrInvalidEmailFormat  = errors.New("invalid email format")
	ErrDispatchFailed      = errors.New("email dispatch failed")
	ErrCaptchaUnconfigured = errors.New("captcha secret key not configured")
	ErrMailerUnconfigured  = errors.New("mail transport not configured")
)

// MissingFieldsError lists every required field absent from a submission
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingFields
}

// DispatchError wraps the transport failure behind a generic dispatch error
type DispatchError struct {
	Cause error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("email dispatch failed: %v", e.Cause)
}

func (e *DispatchError) Is(target error) bool {
	return target == ErrDispatchFailed
}

func (e *DispatchError) Unwrap() error {
	return e.Cause
}
