package webdriver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
)

// hostNewline is the line-ending convention of the platform the client runs
// on. Legacy servers emit Windows line endings regardless of the client
// platform, so string results are normalized to this.
var hostNewline = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// serverReply is the outer response envelope. The legacy dialect populates
// Status and a top-level SessionID; W3C wraps everything in Value.
type serverReply struct {
	SessionID *string         `json:"sessionId"`
	Status    *int            `json:"status"`
	State     string          `json:"state"`
	Value     json.RawMessage `json:"value"`
}

// w3cErrorValue is the error object W3C servers place inside the value
// field.
type w3cErrorValue struct {
	Error      string      `json:"error"`
	Message    string      `json:"message"`
	Stacktrace string      `json:"stacktrace"`
	Data       interface{} `json:"data"`
}

// legacyErrorValue is the error payload legacy servers place inside the
// value field alongside the numeric status.
type legacyErrorValue struct {
	Message    string      `json:"message"`
	Screen     string      `json:"screen"`
	Stacktrace interface{} `json:"stackTrace"`
}

// decodeResponse interprets a raw HTTP response according to the session's
// dialect and yields the unwrapped value or a typed error. It is a pure
// function: decoding the same inputs twice yields identical results.
func decodeResponse(d Dialect, httpStatus int, contentType string, body []byte) (json.RawMessage, error) {
	// A quirk of one legacy server implementation: trailing NUL bytes after
	// the payload. Strip them before anything else looks at the body.
	body = bytes.TrimRight(body, "\x00")

	if !strings.HasPrefix(contentType, jsonContentType) {
		// Under W3C error-ness lives in the HTTP status, so a non-JSON
		// error body (a proxy's error page, say) is still an error.
		if d != OSS && httpStatus >= 400 {
			return nil, bucketHTTPError(httpStatus, body)
		}
		// Legacy servers historically returned some payloads (screenshots,
		// for one) as bare text. Treat the raw text as the literal value.
		data, err := json.Marshal(normalizeNewlines(string(body)))
		if err != nil {
			return nil, &Error{Kind: ErrProtocolDecode, HTTPStatus: httpStatus, Err: err}
		}
		return data, nil
	}

	reply := new(serverReply)
	if err := json.Unmarshal(body, reply); err != nil {
		if httpStatus >= 400 {
			return nil, bucketHTTPError(httpStatus, body)
		}
		return nil, &Error{
			Kind:       ErrProtocolDecode,
			HTTPStatus: httpStatus,
			Message:    fmt.Sprintf("response body is not valid JSON: %v", err),
		}
	}

	switch d {
	case OSS:
		if reply.Status == nil {
			return nil, &Error{
				Kind:       ErrProtocolDecode,
				HTTPStatus: httpStatus,
				Message:    "legacy response envelope has no status field",
			}
		}
		if *reply.Status != 0 {
			return nil, decodeLegacyError(httpStatus, *reply.Status, reply.Value)
		}
	default:
		if werr := decodeW3CError(httpStatus, reply.Value); werr != nil {
			return nil, werr
		}
	}

	return normalizeValue(reply.Value), nil
}

// decodeW3CError returns the typed error carried in a W3C value object, or
// nil if the response is a success. Per the protocol, an error is present
// iff the HTTP status is 4xx/5xx or the value carries an error field.
func decodeW3CError(httpStatus int, value json.RawMessage) error {
	var ev w3cErrorValue
	// The value of a successful command can be any JSON type; only objects
	// can carry an error field, so a failed unmarshal just means "not an
	// error object".
	hasErrorField := json.Unmarshal(value, &ev) == nil && ev.Error != ""
	if httpStatus < 400 && !hasErrorField {
		return nil
	}
	if !hasErrorField {
		return bucketHTTPError(httpStatus, value)
	}
	kind, ok := w3cErrorKinds[ev.Error]
	if !ok {
		kind = ErrWebDriver
	}
	return &Error{
		Kind:       kind,
		Code:       ev.Error,
		HTTPStatus: httpStatus,
		Message:    ev.Message,
		Stacktrace: ev.Stacktrace,
		Data:       ev.Data,
	}
}

// decodeLegacyError maps a non-zero legacy status code onto a typed error,
// folding in the message the server put inside the value object.
func decodeLegacyError(httpStatus, status int, value json.RawMessage) error {
	entry, ok := legacyErrors[status]
	if !ok {
		entry = legacyError{ErrWebDriver, fmt.Sprintf("unknown error - %d", status)}
	}
	err := &Error{
		Kind:         entry.kind,
		Code:         entry.message,
		LegacyStatus: status,
		HTTPStatus:   httpStatus,
	}
	var ev legacyErrorValue
	if json.Unmarshal(value, &ev) == nil {
		err.Message = ev.Message
		err.Screen = ev.Screen
		err.Data = ev.Stacktrace
	}
	return err
}

// bucketHTTPError classifies an error response whose body carries no usable
// error object: 4xx means the server did not recognize the command, 5xx
// means it failed while handling it.
func bucketHTTPError(httpStatus int, body []byte) error {
	kind := ErrUnknownError
	if httpStatus < 500 {
		kind = ErrUnknownCommand
	}
	return &Error{
		Kind:       kind,
		HTTPStatus: httpStatus,
		Message:    fmt.Sprintf("bad server reply status %d: %s", httpStatus, bytes.TrimSpace(body)),
	}
}

// normalizeValue applies line-ending normalization to top-level string
// values only; nested object fields are left untouched.
func normalizeValue(value json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return value
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return value
	}
	normalized := normalizeNewlines(s)
	if normalized == s {
		return value
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return value
	}
	return data
}

// normalizeNewlines collapses Windows line endings to "\n" and re-expands
// to the host convention. Reproduces a long-standing interop fix for a
// server that emits "\r\n" regardless of platform.
func normalizeNewlines(s string) string {
	s = strings.Replace(s, "\r\n", "\n", -1)
	if hostNewline != "\n" {
		s = strings.Replace(s, "\n", hostNewline, -1)
	}
	return s
}
