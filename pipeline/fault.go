package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Keksclan/goRawrQueue/message"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Fault is an error carrying an explicit HTTP status hint. Middleware return
// it to choose the status of the error response.
type Fault struct {
	Code int
	Msg  string
	Err  error
}

// NewFault returns a Fault with the given status hint and message.
func NewFault(code int, msg string) *Fault {
	return &Fault{Code: code, Msg: msg}
}

// Faultf is like NewFault with a formatted message. Every %w verb is
// honored.
func Faultf(code int, format string, args ...any) *Fault {
	err := fmt.Errorf(format, args...)
	return &Fault{Code: code, Msg: err.Error(), Err: err}
}

func (f *Fault) Error() string { return f.Msg }

func (f *Fault) Unwrap() error { return f.Err }

// StatusCode returns the status hint.
func (f *Fault) StatusCode() int { return f.Code }

// statusCoder is implemented by errors that carry a numeric status hint.
type statusCoder interface {
	StatusCode() int
}

// CodeOf extracts the status hint carried by err. Errors implementing
// StatusCode() int win; gRPC status errors are mapped to their HTTP
// equivalent; anything else yields 0.
func CodeOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	if st, ok := status.FromError(err); ok && err != nil {
		return HTTPStatusFromCode(st.Code())
	}
	return 0
}

// StatusFor returns code when it is a valid HTTP status (100-599) and 500
// otherwise.
func StatusFor(code int) int {
	if code < 100 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}

// HTTPStatusFromCode maps a gRPC code to the HTTP status conventionally used
// for it by gRPC gateways.
func HTTPStatusFromCode(c codes.Code) int {
	switch c {
	case codes.OK:
		return http.StatusOK
	case codes.Canceled:
		return 499
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ChainFault describes a middleware that failed during dispatch. The handler
// absorbs it and answers with [ChainFault.Response].
type ChainFault struct {
	// Middleware is the diagnostic name of the failing middleware.
	Middleware string
	// Code is the raw status hint carried by the failure, 0 if none.
	Code int
	// Status is the HTTP status of the synthesized response.
	Status int
	Err    error
}

func newChainFault(middleware string, err error) *ChainFault {
	code := CodeOf(err)
	return &ChainFault{
		Middleware: middleware,
		Code:       code,
		Status:     StatusFor(code),
		Err:        err,
	}
}

func (f *ChainFault) Error() string {
	return fmt.Sprintf("fault %d in middleware %s: %v", f.Code, f.Middleware, f.Err)
}

func (f *ChainFault) Unwrap() error { return f.Err }

// Response returns the error response for f. It carries a Warning header
// naming the failing middleware and a plain text diagnostic body.
func (f *ChainFault) Response() message.Response {
	return message.Text(f.Status, f.Error()).
		WithHeader("Warning", fmt.Sprintf("Error %d in %s", f.Code, f.Middleware))
}

// panicError converts a recovered panic value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
