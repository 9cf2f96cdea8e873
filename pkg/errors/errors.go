/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import (
	"errors"
)

// StatusError is an error classified by a StatusCode. Code is an optional
// machine readable name such as "ErrInvalidPosition".
type StatusError interface {
	error
	Status() StatusCode
	Code() string
	WithCode(code string) StatusError
}

// statusError is kept comparable so that sentinel values declared with
// WithCode match themselves under errors.Is.
type statusError struct {
	cause  error
	status StatusCode
	code   string
}

func newStatus(status StatusCode, message string) StatusError {
	return statusError{cause: errors.New(message), status: status}
}

func (e statusError) Error() string      { return e.cause.Error() }
func (e statusError) Unwrap() error      { return e.cause }
func (e statusError) Status() StatusCode { return e.status }
func (e statusError) Code() string       { return e.code }

// WithCode returns a copy of the error named by the given code.
func (e statusError) WithCode(code string) StatusError {
	e.code = code
	return e
}

// InvalidArgument returns an error for input the caller should fix.
func InvalidArgument(message string) StatusError {
	return newStatus(ErrCodeInvalidArgument, message)
}

// NotFound returns an error for a missing entity.
func NotFound(message string) StatusError {
	return newStatus(ErrCodeNotFound, message)
}

// Internal returns an error for a broken engine invariant.
func Internal(message string) StatusError {
	return newStatus(ErrCodeInternal, message)
}

// StatusOf returns the status of the first StatusError in the chain of err,
// or 0 if there is none.
func StatusOf(err error) StatusCode {
	if s, ok := find(err); ok {
		return s.Status()
	}
	return 0
}

// CodeOf returns the code of the first StatusError in the chain of err.
func CodeOf(err error) string {
	if s, ok := find(err); ok {
		return s.Code()
	}
	return ""
}

// IsStatus reports whether err is classified by the given status.
func IsStatus(err error, status StatusCode) bool {
	return StatusOf(err) == status
}

func find(err error) (StatusError, bool) {
	var s StatusError
	if err == nil || !errors.As(err, &s) {
		return nil, false
	}
	return s, true
}

// Is is errors.Is of the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// New is errors.New of the standard library.
func New(message string) error {
	return errors.New(message)
}
