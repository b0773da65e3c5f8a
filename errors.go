package webdriver

import "fmt"

// ErrorKind classifies a failure. Wire-level error codes map onto kinds
// 1:1; client-side failures (transport, decoding, bad arguments) have kinds
// of their own.
type ErrorKind int

const (
	// ErrWebDriver is the catch-all for wire error codes this client does
	// not recognize. The raw code is preserved in Error.Code.
	ErrWebDriver ErrorKind = iota

	// Client-side kinds.
	ErrTransport
	ErrProtocolDecode
	ErrType

	// The W3C error-code vocabulary.
	ErrElementClickIntercepted
	ErrElementNotInteractable
	ErrElementNotSelectable
	ErrElementNotVisible
	ErrInsecureCertificate
	ErrInvalidArgument
	ErrInvalidCookieDomain
	ErrInvalidCoordinates
	ErrInvalidElementState
	ErrInvalidSelector
	ErrInvalidSessionID
	ErrJavaScriptError
	ErrMoveTargetOutOfBounds
	ErrNoSuchAlert
	ErrNoSuchCookie
	ErrNoSuchElement
	ErrNoSuchFrame
	ErrNoSuchWindow
	ErrScriptTimeout
	ErrSessionNotCreated
	ErrStaleElementReference
	ErrTimeout
	ErrUnableToCaptureScreen
	ErrUnableToSetCookie
	ErrUnexpectedAlertOpen
	ErrUnknownCommand
	ErrUnknownError
	ErrUnknownMethod
	ErrUnsupportedOperation
)

var errorKindNames = map[ErrorKind]string{
	ErrWebDriver:               "webdriver error",
	ErrTransport:               "transport error",
	ErrProtocolDecode:          "protocol decode error",
	ErrType:                    "type error",
	ErrElementClickIntercepted: "element click intercepted",
	ErrElementNotInteractable:  "element not interactable",
	ErrElementNotSelectable:    "element is not selectable",
	ErrElementNotVisible:       "element not visible",
	ErrInsecureCertificate:     "insecure certificate",
	ErrInvalidArgument:         "invalid argument",
	ErrInvalidCookieDomain:     "invalid cookie domain",
	ErrInvalidCoordinates:      "invalid coordinates",
	ErrInvalidElementState:     "invalid element state",
	ErrInvalidSelector:         "invalid selector",
	ErrInvalidSessionID:        "invalid session id",
	ErrJavaScriptError:         "javascript error",
	ErrMoveTargetOutOfBounds:   "move target out of bounds",
	ErrNoSuchAlert:             "no such alert",
	ErrNoSuchCookie:            "no such cookie",
	ErrNoSuchElement:           "no such element",
	ErrNoSuchFrame:             "no such frame",
	ErrNoSuchWindow:            "no such window",
	ErrScriptTimeout:           "script timeout",
	ErrSessionNotCreated:       "session not created",
	ErrStaleElementReference:   "stale element reference",
	ErrTimeout:                 "timeout",
	ErrUnableToCaptureScreen:   "unable to capture screen",
	ErrUnableToSetCookie:       "unable to set cookie",
	ErrUnexpectedAlertOpen:     "unexpected alert open",
	ErrUnknownCommand:          "unknown command",
	ErrUnknownError:            "unknown error",
	ErrUnknownMethod:           "unknown method",
	ErrUnsupportedOperation:    "unsupported operation",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error kind(%d)", int(k))
}

// w3cErrorKinds maps the W3C wire error strings onto kinds. This table must
// stay exhaustive over the protocol's error-code vocabulary; strings not
// present here decode to ErrWebDriver with the raw code preserved.
var w3cErrorKinds = map[string]ErrorKind{
	"element click intercepted": ErrElementClickIntercepted,
	"element not interactable":  ErrElementNotInteractable,
	"element not selectable":    ErrElementNotSelectable,
	"element not visible":       ErrElementNotVisible,
	"insecure certificate":      ErrInsecureCertificate,
	"invalid argument":          ErrInvalidArgument,
	"invalid cookie domain":     ErrInvalidCookieDomain,
	"invalid coordinates":       ErrInvalidCoordinates,
	"invalid element state":     ErrInvalidElementState,
	"invalid selector":          ErrInvalidSelector,
	"invalid session id":        ErrInvalidSessionID,
	"javascript error":          ErrJavaScriptError,
	"move target out of bounds": ErrMoveTargetOutOfBounds,
	"no such alert":             ErrNoSuchAlert,
	"no such cookie":            ErrNoSuchCookie,
	"no such element":           ErrNoSuchElement,
	"no such frame":             ErrNoSuchFrame,
	"no such window":            ErrNoSuchWindow,
	"script timeout":            ErrScriptTimeout,
	"session not created":       ErrSessionNotCreated,
	"stale element reference":   ErrStaleElementReference,
	"timeout":                   ErrTimeout,
	"unable to capture screen":  ErrUnableToCaptureScreen,
	"unable to set cookie":      ErrUnableToSetCookie,
	"unexpected alert open":     ErrUnexpectedAlertOpen,
	"unknown command":           ErrUnknownCommand,
	"unknown error":             ErrUnknownError,
	"unknown method":            ErrUnknownMethod,
	"unsupported operation":     ErrUnsupportedOperation,
}

// legacyError is one entry of the legacy numeric status-code table.
type legacyError struct {
	kind    ErrorKind
	message string
}

// legacyErrors are the numeric status codes returned by JSON Wire Protocol
// servers.
var legacyErrors = map[int]legacyError{
	6:  {ErrInvalidSessionID, "invalid session id"},
	7:  {ErrNoSuchElement, "no such element"},
	8:  {ErrNoSuchFrame, "no such frame"},
	9:  {ErrUnknownCommand, "unknown command"},
	10: {ErrStaleElementReference, "stale element reference"},
	11: {ErrElementNotVisible, "element not visible"},
	12: {ErrInvalidElementState, "invalid element state"},
	13: {ErrUnknownError, "unknown error"},
	15: {ErrElementNotSelectable, "element is not selectable"},
	17: {ErrJavaScriptError, "javascript error"},
	19: {ErrInvalidSelector, "xpath lookup error"},
	21: {ErrTimeout, "timeout"},
	23: {ErrNoSuchWindow, "no such window"},
	24: {ErrInvalidCookieDomain, "invalid cookie domain"},
	25: {ErrUnableToSetCookie, "unable to set cookie"},
	26: {ErrUnexpectedAlertOpen, "unexpected alert open"},
	27: {ErrNoSuchAlert, "no alert open"},
	28: {ErrScriptTimeout, "script timeout"},
	29: {ErrInvalidCoordinates, "invalid element coordinates"},
	32: {ErrInvalidSelector, "invalid selector"},
	33: {ErrSessionNotCreated, "session not created"},
	34: {ErrMoveTargetOutOfBounds, "move target out of bounds"},
}

// Error is a failure reported by the remote end or produced while reaching
// or decoding it. The server-supplied message, when present, is preserved
// verbatim in Message; Context carries local detail (which command, which
// selector) and is prepended, never substituted.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Code is the raw wire error string (W3C dialect), if any.
	Code string
	// LegacyStatus is the raw numeric status (OSS dialect), if any.
	LegacyStatus int
	// HTTPStatus is the HTTP status code of the response, if one was
	// received.
	HTTPStatus int
	// Message is the server-provided human-readable message, verbatim.
	Message string
	// Context is client-side detail about the failing call.
	Context string
	// Stacktrace is the server-side stack trace, when provided.
	Stacktrace string
	// Screen is a base64-encoded screenshot some legacy servers attach to
	// failures.
	Screen string
	// Data is any additional payload attached to the error value.
	Data interface{}
	// Err is the underlying cause for transport and decode failures.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Code != "" && e.Code != msg {
		msg = e.Code
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Context != "" {
		msg = fmt.Sprintf("%s: %s", e.Context, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality, so callers can match against &Error{Kind: k}
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

// errKind extracts the kind from an error returned by this package.
// Non-package errors report ErrTransport, the only way they can arise.
func errKind(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ErrTransport
}
