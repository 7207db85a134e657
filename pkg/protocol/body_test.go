package protocol

import (
	"testing"
)

func TestWireResultRoundTrip(t *testing.T) {
	inner, err := Marshal(&SendMsgResponse{MessageID: "msg-1"})
	if err != nil {
		t.Fatalf("Marshal inner: %v", err)
	}

	data, err := Marshal(&WireResult{Code: WireCodeOK, Body: inner})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var res WireResult
	if err := Unmarshal(data, &res); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if res.Code != WireCodeOK {
		t.Errorf("Code = %d, want %d", res.Code, WireCodeOK)
	}

	var body SendMsgResponse
	if err := Unmarshal(res.Body, &body); err != nil {
		t.Fatalf("Unmarshal body: %v", err)
	}
	if body.MessageID != "msg-1" {
		t.Errorf("MessageID = %q, want %q", body.MessageID, "msg-1")
	}
}

func TestLoginResponseVariants(t *testing.T) {
	tests := []struct {
		name string
		resp LoginResponse
	}{
		{
			name: "ok with identity",
			resp: LoginResponse{
				Verdict:      VerdictOK,
				Identity:     &AccountIdentity{AccountID: 1000, Nickname: "alice"},
				SessionToken: []byte{0x01, 0x02},
			},
		},
		{
			name: "captcha challenge",
			resp: LoginResponse{
				Verdict:   VerdictCaptcha,
				Challenge: &Challenge{Kind: "captcha", Image: []byte{0xFF, 0xD8}},
			},
		},
		{
			name: "rejected",
			resp: LoginResponse{Verdict: VerdictError, ErrCode: 1, ErrMessage: "bad credential"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(&tt.resp)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var got LoginResponse
			if err := Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.Verdict != tt.resp.Verdict {
				t.Errorf("Verdict = %v, want %v", got.Verdict, tt.resp.Verdict)
			}
			if (got.Identity == nil) != (tt.resp.Identity == nil) {
				t.Errorf("Identity presence = %v, want %v", got.Identity != nil, tt.resp.Identity != nil)
			}
			if (got.Challenge == nil) != (tt.resp.Challenge == nil) {
				t.Errorf("Challenge presence = %v, want %v", got.Challenge != nil, tt.resp.Challenge != nil)
			}
			if got.ErrMessage != tt.resp.ErrMessage {
				t.Errorf("ErrMessage = %q, want %q", got.ErrMessage, tt.resp.ErrMessage)
			}
		})
	}
}
