package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "ficha not found",
			expected: "NOT_FOUND: ficha not found",
		},
		{
			name:     "failed precondition error",
			code:     errors.CodeFailedPrecondition,
			message:  "insufficient skill points",
			expected: "FAILED_PRECONDITION: insufficient skill points",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Equal(tc.expected, err.Error())
			s.Equal(tc.code, err.Code)
			s.Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestWithMeta() {
	err := errors.FailedPrecondition("cannot decrease below previously committed value").
		WithMeta("attribute", "strength").
		WithMeta("locked", 12)

	s.Equal("strength", err.Meta["attribute"])
	s.Equal(12, err.Meta["locked"])
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(baseErr, "failed to mirror state")

	s.Equal(errors.CodeInternal, wrapped.Code)
	s.Equal("failed to mirror state", wrapped.Message)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	baseErr := errors.NotFound("key not found")
	wrapped := errors.Wrap(baseErr, "ficha not found")

	s.Equal(errors.CodeNotFound, wrapped.Code)
	s.Equal("ficha not found", wrapped.Message)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	baseErr := fmt.Errorf("unexpected end of JSON input")
	wrapped := errors.WrapWithCode(baseErr, errors.CodeInvalidArgument, "invalid import")

	s.Equal(errors.CodeInvalidArgument, wrapped.Code)
	s.Equal("invalid import", wrapped.Message)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Nil(errors.Wrap(nil, "should be nil"))
	s.Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestErrorIs() {
	err1 := errors.NotFound("test")
	err2 := errors.NotFound("other")
	err3 := errors.InvalidArgument("test")

	s.True(err1.Is(err2))
	s.False(err1.Is(err3))
}

func (s *ErrorsTestSuite) TestHelperFunctions() {
	notFoundErr := errors.NotFound("test")
	rejected := errors.FailedPrecondition("test")
	wrappedErr := errors.Wrap(notFoundErr, "wrapped")

	s.True(errors.IsNotFound(notFoundErr))
	s.True(errors.IsNotFound(wrappedErr))
	s.False(errors.IsNotFound(rejected))

	s.True(errors.IsFailedPrecondition(rejected))
	s.True(errors.IsPermissionDenied(errors.PermissionDenied("wrong passphrase")))
	s.True(errors.IsInternal(fmt.Errorf("plain")))
}

func (s *ErrorsTestSuite) TestGetCodeAndMessage() {
	err := errors.NotFound("user facing")
	wrapped := errors.Wrap(err, "wrapped message")

	s.Equal(errors.CodeNotFound, errors.GetCode(wrapped))
	s.Equal(errors.CodeOK, errors.GetCode(nil))
	s.Equal("wrapped message", errors.GetMessage(wrapped))
	s.Equal("standard error", errors.GetMessage(fmt.Errorf("standard error")))
	s.Equal("value", errors.GetMeta(errors.Wrap(err.WithMeta("key", "value"), "x"))["key"])
	s.Nil(errors.GetMeta(fmt.Errorf("standard error")))
}

func (s *ErrorsTestSuite) TestExitCode() {
	testCases := []struct {
		code     errors.Code
		expected int
	}{
		{errors.CodeOK, 0},
		{errors.CodeFailedPrecondition, 2},
		{errors.CodeInvalidArgument, 2},
		{errors.CodePermissionDenied, 3},
		{errors.CodeUnavailable, 4},
		{errors.CodeInternal, 1},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, tc.code.ExitCode())
		})
	}
}
