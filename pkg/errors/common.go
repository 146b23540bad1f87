// Golang backend for real-time collaborative text editing
// Copyright (C) 2026 Jakob Ackermann <das7pad@outlook.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package errors

import (
	"errors"
)

type UserFacingError interface {
	IsUserFacing()
}

// FatalError marks errors that must terminate the client connection.
type FatalError interface {
	IsFatal()
}

type Causer interface {
	Cause() error
}

func IsFatalError(err error) bool {
	_, ok := GetCause(err).(FatalError)
	return ok
}

func GetPublicMessage(err error, fallback string) string {
	if _, ok := GetCause(err).(UserFacingError); ok {
		// Include tags
		return err.Error()
	}
	return fallback
}

// GetCode returns the wire error code, empty for uncoded errors.
func GetCode(err error) string {
	if coded, ok := GetCause(err).(*CodedError); ok {
		return coded.Code
	}
	return ""
}

type TaggedError struct {
	msg   string
	cause error
}

func (t *TaggedError) Error() string {
	return t.msg + ": " + t.cause.Error()
}

func (t *TaggedError) Cause() error {
	return t.cause
}

func (t *TaggedError) Unwrap() error {
	return t.cause
}

func Tag(err error, msg string) *TaggedError {
	return &TaggedError{msg: msg, cause: err}
}

func GetCause(err error) error {
	if causer, ok := err.(Causer); ok {
		return GetCause(causer.Cause())
	}
	return err
}

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) IsUserFacing() {}

func IsValidationError(err error) bool {
	_, ok := GetCause(err).(*ValidationError)
	return ok
}

type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Msg
}

func (e *InvalidStateError) IsUserFacing() {}

func IsInvalidStateError(err error) bool {
	_, ok := GetCause(err).(*InvalidStateError)
	return ok
}

type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: " + e.Reason
}

func (e *UnauthorizedError) IsUserFacing() {}

func (e *UnauthorizedError) IsFatal() {}

func IsUnauthorizedError(err error) bool {
	_, ok := GetCause(err).(*UnauthorizedError)
	return ok
}

type NotAuthorizedError struct{}

func (e *NotAuthorizedError) Error() string {
	return "not authorized"
}

func (e *NotAuthorizedError) IsUserFacing() {}

func (e *NotAuthorizedError) IsFatal() {}

func IsNotAuthorizedError(err error) bool {
	_, ok := GetCause(err).(*NotAuthorizedError)
	return ok
}

type NotFoundError struct{}

func (e *NotFoundError) Error() string {
	return "not found"
}

func (e *NotFoundError) IsUserFacing() {}

func (e *NotFoundError) IsFatal() {}

func IsNotFoundError(err error) bool {
	_, ok := GetCause(err).(*NotFoundError)
	return ok
}

// CodedError is reported to the client as error{message,code} and keeps
// the connection open.
type CodedError struct {
	Msg  string
	Code string
}

func (e *CodedError) Error() string {
	return e.Msg
}

func (e *CodedError) IsUserFacing() {}

func IsCodedError(err error) bool {
	_, ok := GetCause(err).(*CodedError)
	return ok
}

// New is a re-export of the built-in errors.New function.
var New = errors.New
