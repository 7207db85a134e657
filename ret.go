package mirage

import (
	"errors"

	"github.com/mirageim/mirage-go/pkg/correlator"
	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/session"
)

// Result codes of the uniform operation envelope.
const (
	RetOK      = 0   // Operation succeeded
	RetAsync   = 1   // Accepted for asynchronous processing
	RetError   = 100 // Generic client-side error
	RetFailed  = 102 // Server rejected the operation
	RetTimeout = 103 // Deadline expired without a response
	RetOffline = 104 // Session not online (or gated by a reload)
)

// ErrInfo is the structured error carried by a failed envelope.
type ErrInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Ret is the uniform result envelope every operation returns. Data is
// nil on failure and on operations with no payload.
type Ret struct {
	Retcode int      `json:"retcode"`
	Status  string   `json:"status"`
	Data    any      `json:"data"`
	Error   *ErrInfo `json:"error,omitempty"`
}

// OK reports whether the operation succeeded (including asynchronous
// acceptance).
func (r *Ret) OK() bool {
	return r.Retcode == RetOK || r.Retcode == RetAsync
}

func ok(data any) *Ret {
	return &Ret{Retcode: RetOK, Status: "ok", Data: data}
}

func async(data any) *Ret {
	return &Ret{Retcode: RetAsync, Status: "async", Data: data}
}

// retFromErr maps an operation error onto the envelope. The gate and
// transport conditions have fixed codes; server rejections carry the
// server's code and message; everything else is the generic error.
func retFromErr(err error) *Ret {
	var op *session.OpError
	switch {
	case errors.Is(err, session.ErrNotReady),
		errors.Is(err, session.ErrTerminated),
		errors.Is(err, correlator.ErrConnectionLost):
		return &Ret{
			Retcode: RetOffline,
			Status:  "offline",
			Error:   &ErrInfo{Code: RetOffline, Message: err.Error()},
		}
	case errors.Is(err, correlator.ErrTimeout):
		return &Ret{
			Retcode: RetTimeout,
			Status:  "timeout",
			Error:   &ErrInfo{Code: RetTimeout, Message: err.Error()},
		}
	case errors.As(err, &op):
		return &Ret{
			Retcode: RetFailed,
			Status:  "failed",
			Error:   &ErrInfo{Code: op.Code, Message: op.Message},
		}
	default:
		return &Ret{
			Retcode: RetError,
			Status:  "error",
			Error:   &ErrInfo{Code: RetError, Message: err.Error()},
		}
	}
}

// wireErr converts a non-success response envelope into a
// session.OpError so retFromErr maps it to RetFailed.
func wireErr(res *protocol.WireResult) error {
	if res.Code == protocol.WireCodeOK || res.Code == protocol.WireCodeAsync {
		return nil
	}
	return &session.OpError{Code: res.Code, Message: res.Message}
}
