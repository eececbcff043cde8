package domain

import (
	"errors"
	"fmt"

	perr "merchantfeed/internal/platform/errors"
)

// TransportKind is the typed reason a fetch failed, following the wget exit status convention
type TransportKind int

const (
	// KindGeneric is exit status 1
	KindGeneric TransportKind = iota + 1
	// KindParse is exit status 2, command line or config parse error
	KindParse
	// KindFileIO is exit status 3
	KindFileIO
	// KindNetwork is exit status 4
	KindNetwork
	// KindTLS is exit status 5, certificate verification failed
	KindTLS
	// KindAuth is exit status 6
	KindAuth
	// KindProtocol is exit status 7
	KindProtocol
	// KindServer is exit status 8, the server answered with an error response
	KindServer
)

var kindNames = map[TransportKind]string{
	KindGeneric:  "generic_error",
	KindParse:    "parse_error",
	KindFileIO:   "file_io_error",
	KindNetwork:  "network_failure",
	KindTLS:      "ssl_verification_failure",
	KindAuth:     "authentication_failure",
	KindProtocol: "protocol_error",
	KindServer:   "server_error_response",
}

// String returns the snake case kind name
func (k TransportKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("transport_kind(%d)", int(k))
}

// TransportKindFromExitCode maps a fetch tool exit status to a kind
func TransportKindFromExitCode(code int) (TransportKind, bool) {
	k := TransportKind(code)
	_, ok := kindNames[k]
	return k, ok
}

// TransportError is a classified fetch failure; callers may reschedule the import
type TransportError struct {
	Kind     TransportKind
	ExitCode int
	Message  string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch failed (%s, exit %d): %s", e.Kind, e.ExitCode, e.Message)
}

// NewTransportError wraps a TransportError in the transport error code
func NewTransportError(kind TransportKind, msg string) error {
	te := &TransportError{Kind: kind, ExitCode: int(kind), Message: msg}
	return perr.Wrap(te, perr.ErrorCodeTransport, "transport failure: "+kind.String())
}

// AsTransport extracts a TransportError from err
func AsTransport(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// ExitInvalidFeed is the exit status of the process stage when a guard rejected the feed
const ExitInvalidFeed = 65

// StageFailure is the structured failure of one command in a running plan
type StageFailure struct {
	Stage    StageName
	Command  string
	ExitCode int
	Stderr   string
}

// Error renders the diagnostic text: the argv, the exit code and the captured stderr
func (f *StageFailure) Error() string {
	return fmt.Sprintf("%s Exit-Code: %d %s", f.Command, f.ExitCode, f.Stderr)
}

// AsStageFailure extracts a StageFailure from err
func AsStageFailure(err error) (*StageFailure, bool) {
	var sf *StageFailure
	if errors.As(err, &sf) {
		return sf, true
	}
	return nil, false
}

// ErrorKind returns a short label for logs and job rows
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	if te, ok := AsTransport(err); ok {
		return te.Kind.String()
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeConfiguration:
		return "configuration"
	case perr.ErrorCodeInvalidFeed:
		return "invalid_feed"
	case perr.ErrorCodeExecution:
		return "execution"
	case perr.ErrorCodeInvalidArgument:
		return "invalid_argument"
	case perr.ErrorCodeUnavailable:
		return "unavailable"
	}
	if _, ok := AsStageFailure(err); ok {
		return "execution"
	}
	return "internal"
}
