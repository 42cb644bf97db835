// Package detector wraps the external content-analysis services, one
// client per content category. Each call is attempted once with its own
// timeout; failures surface as *Error so callers can tell timeouts apart.
package detector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// Verdict is the normalized outcome of a detector call.
type Verdict string

const (
	VerdictReal      Verdict = "real"
	VerdictFake      Verdict = "fake"
	VerdictUncertain Verdict = "uncertain"
)

// Layer is one stage of the video detector's multi-stage pipeline.
type Layer struct {
	Name           string  `json:"name"`
	Verdict        string  `json:"verdict"`
	Confidence     float64 `json:"confidence"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// VideoResult is the layered verdict for a video asset.
type VideoResult struct {
	Verdict      Verdict
	Confidence   float64 // 0..1
	Layers       []Layer
	TotalSeconds float64
}

// ImageResult is the normalized image detector outcome.
type ImageResult struct {
	Label       string
	Confidence  float64 // 0..1
	AIGenerated bool
}

// TextResult is the three-way text detector outcome.
type TextResult struct {
	Prediction string // AI | Human | UNCERTAIN
	Confidence float64
	Agreement  string
}

// Error is a typed detector failure. Timeout marks calls that expired
// rather than being rejected.
type Error struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *Error) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(op string, err error) *Error {
	return &Error{Op: op, Timeout: isTimeout(err), Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
