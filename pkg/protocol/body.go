package protocol

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR modes shared by everything that marshals payload bodies.
// Core-deterministic encoding keeps request bytes stable, which the
// degraded-send shard path relies on when re-framing a message.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("protocol: cbor enc mode: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 131072,
		MaxMapPairs:      131072,
	}.DecMode()
	if err != nil {
		panic("protocol: cbor dec mode: " + err.Error())
	}
}

// Marshal encodes a payload body as CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes a CBOR payload body.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// WireResult is the body of every Response frame: an application
// result code, a human-readable message for nonzero codes, and the
// operation-specific body.
//
// Code zero is success, one means the server accepted the operation
// for asynchronous processing. Anything else is an application error
// (invalid identifier, insufficient permission, rate limit).
type WireResult struct {
	Code    int             `cbor:"code"`
	Message string          `cbor:"message,omitempty"`
	Body    cbor.RawMessage `cbor:"body,omitempty"`
}

// Result codes the server uses for throttling; the degraded-send
// fallback keys off these.
const (
	WireCodeOK         = 0
	WireCodeAsync      = 1
	WireCodeThrottled  = 120 // Message rejected by risk control
	WireCodeMsgTooLong = 121 // Message over the single-frame limit
)

// LoginVerdict is the server's answer to a credential submission.
type LoginVerdict uint8

const (
	VerdictOK         LoginVerdict = 0x00 // Authenticated
	VerdictCaptcha    LoginVerdict = 0x01 // Captcha challenge required
	VerdictDeviceLock LoginVerdict = 0x02 // Device verification required
	VerdictError      LoginVerdict = 0x03 // Credential rejected
)

// String returns the string representation of the verdict.
func (v LoginVerdict) String() string {
	switch v {
	case VerdictOK:
		return "OK"
	case VerdictCaptcha:
		return "Captcha"
	case VerdictDeviceLock:
		return "DeviceLock"
	case VerdictError:
		return "Error"
	default:
		return "Unknown"
	}
}

// LoginRequest is the body of CmdLogin.
type LoginRequest struct {
	AccountID      int64  `cbor:"account_id"`
	CredentialHash []byte `cbor:"credential_hash"`
	Platform       int    `cbor:"platform"`
	DeviceID       string `cbor:"device_id"`
	DeviceSerial   string `cbor:"device_serial,omitempty"`
	SessionToken   []byte `cbor:"session_token,omitempty"`
}

// Challenge describes a secondary verification step interposed during
// login.
type Challenge struct {
	Kind   string `cbor:"kind"` // "captcha" or "device"
	Image  []byte `cbor:"image,omitempty"`
	URL    string `cbor:"url,omitempty"`
	Prompt string `cbor:"prompt,omitempty"`
}

// AccountIdentity is the profile the server returns on successful
// authentication.
type AccountIdentity struct {
	AccountID int64  `cbor:"account_id"`
	Nickname  string `cbor:"nickname"`
	Sex       string `cbor:"sex,omitempty"`
	Age       int    `cbor:"age,omitempty"`
	Status    int    `cbor:"status"`
}

// LoginResponse is the body answering CmdLogin and CmdSubmitCaptcha.
type LoginResponse struct {
	Verdict      LoginVerdict     `cbor:"verdict"`
	Identity     *AccountIdentity `cbor:"identity,omitempty"`
	Challenge    *Challenge       `cbor:"challenge,omitempty"`
	SessionToken []byte           `cbor:"session_token,omitempty"`
	ErrCode      int              `cbor:"err_code,omitempty"`
	ErrMessage   string           `cbor:"err_message,omitempty"`
}

// CaptchaAnswer is the body of CmdSubmitCaptcha.
type CaptchaAnswer struct {
	Answer string `cbor:"answer"`
}

// Heartbeat is the body of CmdHeartbeat; the response echoes the
// timestamp.
type Heartbeat struct {
	Time int64 `cbor:"time"` // Unix milliseconds
}

// KickoffNotice is the body of the "displaced by another login" push.
type KickoffNotice struct {
	Device  string `cbor:"device,omitempty"`
	Message string `cbor:"message,omitempty"`
}
