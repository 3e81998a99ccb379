// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vpnhouse/songbook/pkg/version"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errorByCodeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "songbook",
	Name:      "errors_total",
	Help:      "number of errors partitioned by code, label, and version info",
}, []string{"code_name", "label", "tag", "commit", "caller"})

func init() {
	prometheus.MustRegister(errorByCodeCounter)
}

// Result is the machine-readable error class sent to API clients.
type Result string

const (
	ResultInternalError        Result = "INTERNAL_ERROR"
	ResultInvalidArgument      Result = "INVALID_ARGUMENT"
	ResultNotFound             Result = "NOT_FOUND"
	ResultEntryExists          Result = "ENTRY_EXISTS"
	ResultStorageError         Result = "STORAGE_ERROR"
	ResultAuthFailed           Result = "AUTH_FAILED"
	ResultForbidden            Result = "FORBIDDEN"
	ResultServiceUnavailable   Result = "SERVICE_UNAVAILABLE"
	ResultUpstreamError        Result = "UPSTREAM_ERROR"
	ResultInvalidConfiguration Result = "INVALID_CONFIGURATION"
	ResultUnknownError         Result = "UNKNOWN_ERROR"
)

// Response is the JSON body written for every failed request.
type Response struct {
	Result  Result  `json:"result"`
	Error   *string `json:"error,omitempty"`
	Field   *string `json:"field,omitempty"`
	Details *string `json:"details,omitempty"`
}

type ErrorType struct {
	httpCode int
	codeName Result
}

var (
	EInternalErrorType        = &ErrorType{http.StatusInternalServerError, ResultInternalError}
	EInvalidArgumentType      = &ErrorType{http.StatusBadRequest, ResultInvalidArgument}
	EEntryNotFoundType        = &ErrorType{http.StatusNotFound, ResultNotFound}
	EExistsType               = &ErrorType{http.StatusConflict, ResultEntryExists}
	EStorageErrorType         = &ErrorType{http.StatusInternalServerError, ResultStorageError}
	EAuthenticationFailedType = &ErrorType{http.StatusUnauthorized, ResultAuthFailed}
	EForbiddenType            = &ErrorType{http.StatusForbidden, ResultForbidden}
	EUnavailableType          = &ErrorType{http.StatusServiceUnavailable, ResultServiceUnavailable}
	EUpstreamErrorType        = &ErrorType{http.StatusBadGateway, ResultUpstreamError}
	EInvalidConfigurationType = &ErrorType{http.StatusInternalServerError, ResultInvalidConfiguration}
)

func EInternalError(description string, err error, fields ...zap.Field) *Error {
	return newError(EInternalErrorType, description, secretiveSerializer, err, nil, fields...)
}

func WInternalError(label, description string, err error, fields ...zap.Field) *Error {
	return newWarning(EInternalErrorType, description, secretiveSerializer, err, nil, label, fields...)
}

func EInvalidArgument(description string, err error, fields ...zap.Field) *Error {
	return newError(EInvalidArgumentType, description, defaultSerializer, err, nil, fields...)
}

func WInvalidArgument(label, description string, err error, fields ...zap.Field) *Error {
	return newWarning(EInvalidArgumentType, description, defaultSerializer, err, nil, label, fields...)
}

func EInvalidField(description string, failedField string, err error, fields ...zap.Field) *Error {
	return newError(EInvalidArgumentType, description, defaultSerializer, err, &failedField, fields...)
}

func EEntryNotFound(description string, err error, fields ...zap.Field) *Error {
	return newError(EEntryNotFoundType, description, defaultSerializer, err, nil, fields...)
}

func WEntryNotFound(label, description string, err error, fields ...zap.Field) *Error {
	return newWarning(EEntryNotFoundType, description, defaultSerializer, err, nil, label, fields...)
}

func EExists(description string, err error, fields ...zap.Field) *Error {
	return newError(EExistsType, description, defaultSerializer, err, nil, fields...)
}

func EStorageError(description string, err error, fields ...zap.Field) *Error {
	return newError(EStorageErrorType, description, secretiveSerializer, err, nil, fields...)
}

func WAuthenticationFailed(label, description string, err error, fields ...zap.Field) *Error {
	return newWarning(EAuthenticationFailedType, description, secretiveSerializer, err, nil, label, fields...)
}

func WForbidden(label, description string, fields ...zap.Field) *Error {
	return newWarning(EForbiddenType, description, secretiveSerializer, nil, nil, label, fields...)
}

func EUnavailable(description string, err error, fields ...zap.Field) *Error {
	return newError(EUnavailableType, description, defaultSerializer, err, nil, fields...)
}

func EUpstreamError(description string, err error, fields ...zap.Field) *Error {
	return newError(EUpstreamErrorType, description, secretiveSerializer, err, nil, fields...)
}

func EInvalidConfiguration(msg string, field string, err error) *Error {
	return newError(EInvalidConfigurationType, msg, defaultSerializer, err, &field)
}

type errorSerializerFunc func(error *Error) (int, []byte)

func marshalError(oError *Response) []byte {
	j, err := json.MarshalIndent(oError, "", "  ")
	if err != nil {
		zap.L().Fatal("can't marshal error", zap.Any("oError", oError), zap.Error(err))
	}

	return j
}

func defaultSerializer(err *Error) (int, []byte) {
	oError := &Response{
		Result: err.errorType.codeName,
		Error:  &err.description,
		Field:  err.failedField,
	}

	if err.nestedError != nil {
		details := err.nestedError.Error()
		oError.Details = &details
	}

	return err.errorType.httpCode, marshalError(oError)
}

func secretiveSerializer(err *Error) (int, []byte) {
	oError := &Response{
		Result: err.errorType.codeName,
		Error:  &err.description,
	}

	return err.errorType.httpCode, marshalError(oError)
}

type Error struct {
	errorType    *ErrorType
	description  string
	nestedError  error
	failedField  *string
	warningLabel string

	serializer          errorSerializerFunc
	externalLoggerLevel string
}

func (e *Error) Is(target error) bool {
	if err2, ok := target.(*Error); ok {
		return e.errorType == err2.errorType
	}

	return false
}

func (e *Error) Unwrap() error {
	return e.nestedError
}

func (e *Error) Error() string {
	text := e.description
	if e.nestedError != nil {
		text = text + ": " + e.nestedError.Error()
	}
	return text
}

// Description returns the message without the nested error.
func (e *Error) Description() string {
	return e.description
}

// HTTPCode returns the status code the error maps to.
func (e *Error) HTTPCode() int {
	return e.errorType.httpCode
}

// IsType reports whether err is an *Error of the given type.
func IsType(err error, t *ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.errorType == t
}

func newError(errorType *ErrorType, description string, serializer errorSerializerFunc, err error, failedField *string, fields ...zap.Field) *Error {
	e := &Error{
		errorType:           errorType,
		description:         description,
		nestedError:         err,
		serializer:          serializer,
		failedField:         failedField,
		externalLoggerLevel: string(sentry.LevelError),
	}

	sendToExternalServices(e, fields...)
	zap.L().Error(e.Error(), fields...)
	return e
}

func newWarning(errorType *ErrorType, msg string, serializer errorSerializerFunc, err error, failedField *string, label string, fields ...zap.Field) *Error {
	if len(label) == 0 {
		label = "unset"
	}
	w := &Error{
		errorType:           errorType,
		description:         msg,
		nestedError:         err,
		serializer:          serializer,
		failedField:         failedField,
		warningLabel:        label,
		externalLoggerLevel: string(sentry.LevelWarning),
	}

	sendToExternalServices(w, fields...)
	zap.L().Warn(w.Error(), fields...)
	return w
}

// ErrorToHttpResponse returns http status code and body bytes.
// Wrapped *Error values keep their own status and body.
func ErrorToHttpResponse(err error) (int, []byte) {
	var e *Error
	if errors.As(err, &e) {
		return e.serializer(e)
	}

	msg := err.Error()
	oError := &Response{
		Result: ResultUnknownError,
		Error:  &msg,
	}
	return http.StatusInternalServerError, marshalError(oError)
}

func sendToExternalServices(e *Error, fields ...zap.Field) {
	errorByCodeCounter.WithLabelValues(
		string(e.errorType.codeName),
		e.warningLabel,
		version.GetTag(),
		version.GetCommit(),
		getCaller(),
	).Inc()

	// fill the scope with error-related fields and push an error
	// within that scope.
	sentry.CurrentHub().WithScope(func(scope *sentry.Scope) {
		scope.SetTag("err_type", string(e.errorType.codeName))

		if e.failedField != nil {
			scope.SetExtra("failed_field", *e.failedField)
		}
		if len(e.warningLabel) > 0 {
			scope.SetExtra("warn_label", e.warningLabel)
		}

		if len(fields) > 0 {
			encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{})
			buf, err := encoder.EncodeEntry(zapcore.Entry{}, fields)
			if err == nil {
				scope.SetExtra("zap_fields", buf.String())
			}
		}

		if e.nestedError == nil {
			scope.SetLevel(sentry.Level(e.externalLoggerLevel))
			sentry.CaptureMessage(e.description)
		} else {
			scope.SetExtra("message", e.description)
			sentry.CaptureException(e.nestedError)
		}
	})
}

func getCaller() string {
	// skip callers in this file, so (srcFile, line) points
	// to the one who invoked xerror.E*(...)
	_, srcFile, line, ok := runtime.Caller(4)
	if !ok {
		return "unknown"
	}

	srcFile = cutCallerFilePath(srcFile)
	return fmt.Sprintf("%s:%d", srcFile, line)
}

// /home/user/src/project/package/foo.go -> package/foo.go
func cutCallerFilePath(file string) string {
	oneSlash := false
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == os.PathSeparator {
			if oneSlash {
				file = file[i+1:]
				break
			}
			oneSlash = true
		}
	}
	return file
}
