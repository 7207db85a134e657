package mirage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mirageim/mirage-go/pkg/correlator"
	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/session"
)

func TestRetFromErr(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantRetcode int
		wantStatus  string
		wantErrCode int
	}{
		{"not ready", session.ErrNotReady, RetOffline, "offline", RetOffline},
		{"terminated", session.ErrTerminated, RetOffline, "offline", RetOffline},
		{"connection lost", correlator.ErrConnectionLost, RetOffline, "offline", RetOffline},
		{"wrapped connection lost", fmt.Errorf("op: %w", correlator.ErrConnectionLost), RetOffline, "offline", RetOffline},
		{"timeout", correlator.ErrTimeout, RetTimeout, "timeout", RetTimeout},
		{"server rejection", &session.OpError{Code: 500, Message: "denied"}, RetFailed, "failed", 500},
		{"wrapped rejection", fmt.Errorf("shard 2/3: %w", &session.OpError{Code: 121, Message: "too long"}), RetFailed, "failed", 121},
		{"generic", errors.New("boom"), RetError, "error", RetError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ret := retFromErr(tt.err)
			if ret.Retcode != tt.wantRetcode {
				t.Errorf("Retcode = %d, want %d", ret.Retcode, tt.wantRetcode)
			}
			if ret.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", ret.Status, tt.wantStatus)
			}
			if ret.Error == nil {
				t.Fatal("Error is nil")
			}
			if ret.Error.Code != tt.wantErrCode {
				t.Errorf("Error.Code = %d, want %d", ret.Error.Code, tt.wantErrCode)
			}
			if ret.OK() {
				t.Error("OK() = true for a failure envelope")
			}
		})
	}
}

func TestRetOK(t *testing.T) {
	if !ok("x").OK() {
		t.Error("ok envelope not OK")
	}
	if !async(nil).OK() {
		t.Error("async envelope not OK")
	}
	if (&Ret{Retcode: RetFailed}).OK() {
		t.Error("failed envelope reported OK")
	}
}

func TestWireErr(t *testing.T) {
	if err := wireErr(&protocol.WireResult{Code: protocol.WireCodeOK}); err != nil {
		t.Errorf("code 0: err = %v", err)
	}
	if err := wireErr(&protocol.WireResult{Code: protocol.WireCodeAsync}); err != nil {
		t.Errorf("code 1: err = %v", err)
	}

	err := wireErr(&protocol.WireResult{Code: 500, Message: "denied"})
	var op *session.OpError
	if !errors.As(err, &op) {
		t.Fatalf("err = %T, want *session.OpError", err)
	}
	if op.Code != 500 || op.Message != "denied" {
		t.Errorf("OpError = %+v", op)
	}
}
