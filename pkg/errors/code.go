package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System, common and validation errors
// 11000-11099: Remote API rejections
// 11100-11199: Transport and decoding failures
// 11200-11299: Flow control (re-entrancy, disposal)
// 11300-11399: Token storage

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301
	PasswordTooWeak    ErrorCode = 10302
	UnknownField       ErrorCode = 10303

	// ========== Remote (11000-11099) ==========
	RemoteRejected ErrorCode = 11000
	Unauthorized   ErrorCode = 11001

	// ========== Network (11100-11199) ==========
	NetworkFailure    ErrorCode = 11100
	MalformedResponse ErrorCode = 11101

	// ========== Flow control (11200-11299) ==========
	SubmitInFlight  ErrorCode = 11200
	ResultDiscarded ErrorCode = 11201
	FlowDisposed    ErrorCode = 11202

	// ========== Storage (11300-11399) ==========
	TokenStoreFailure ErrorCode = 11300
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	Success:             "Success",
	InternalServerError: "Internal error",
	InvalidParams:       "Invalid parameters",

	// Validation
	ValidationFailed:   "Validation failed",
	RequiredFieldEmpty: "missing fields",
	PasswordTooWeak:    "weak password",
	UnknownField:       "Unknown form field",

	// Remote
	RemoteRejected: "Request rejected by server",
	Unauthorized:   "Unauthorized access",

	// Network
	NetworkFailure:    "Network request failed",
	MalformedResponse: "Malformed server response",

	// Flow control
	SubmitInFlight:  "A submission is already in progress",
	ResultDiscarded: "Result discarded",
	FlowDisposed:    "Screen is no longer active",

	// Storage
	TokenStoreFailure: "Token storage failed",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// ErrorKind groups codes into the taxonomy surfaced by the screens.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindInternal   ErrorKind = "internal"
	KindValidation ErrorKind = "validation"
	KindRemote     ErrorKind = "remote"
	KindNetwork    ErrorKind = "network"
	KindFlow       ErrorKind = "flow"
	KindStorage    ErrorKind = "storage"
)

// Kind returns the taxonomy bucket for the code.
func (c ErrorCode) Kind() ErrorKind {
	switch {
	case c == Success:
		return KindNone
	case c == InvalidParams, c >= 10300 && c < 10400:
		return KindValidation
	case c >= 11000 && c < 11100:
		return KindRemote
	case c >= 11100 && c < 11200:
		return KindNetwork
	case c >= 11200 && c < 11300:
		return KindFlow
	case c >= 11300 && c < 11400:
		return KindStorage
	default:
		return KindInternal
	}
}
