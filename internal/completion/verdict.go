// Package completion asks a language model for a short verdict on one text.
package completion

import "strings"

// ErrorMarker prefixes every failure message. Answer text containing it is
// treated as a failure so it never lands in a result cell.
const ErrorMarker = "Error:"

// Verdict is the outcome of one completion call: an answer or a failure,
// never both.
type Verdict struct {
	answer  string
	failure string
}

// Answer returns a successful verdict. Text carrying the error marker is
// turned into a failure.
func Answer(text string) Verdict {
	text = strings.TrimSpace(text)
	if strings.Contains(text, ErrorMarker) {
		return Verdict{failure: text}
	}
	return Verdict{answer: text}
}

// Failure returns a failed verdict with the error marker prefixed.
func Failure(msg string) Verdict {
	if !strings.HasPrefix(msg, ErrorMarker) {
		msg = ErrorMarker + " " + msg
	}
	return Verdict{failure: msg}
}

// Failed reports whether the verdict is a failure.
func (v Verdict) Failed() bool { return v.failure != "" }

// Text returns the answer, empty for a failure.
func (v Verdict) Text() string { return v.answer }

// Error returns the failure description, empty for an answer.
func (v Verdict) Error() string { return v.failure }

// String implements fmt.Stringer.
func (v Verdict) String() string {
	if v.Failed() {
		return v.failure
	}
	return v.answer
}
