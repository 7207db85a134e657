package mirage

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/mirageim/mirage-go/pkg/protocol"
)

func TestSplitShards(t *testing.T) {
	tests := []struct {
		name    string
		message string
		size    int
		want    []string
	}{
		{"fits", "hello", 10, []string{"hello"}},
		{"exact", "abcde", 5, []string{"abcde"}},
		{"split", "abcdef", 3, []string{"abc", "def"}},
		{"uneven", "abcdefg", 3, []string{"abc", "def", "g"}},
		{"empty", "", 3, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitShards(tt.message, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d: %q", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("shard %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitShardsNeverSplitsRunes(t *testing.T) {
	// Three-byte runes against a four-byte budget: each shard can hold
	// only one whole rune.
	message := strings.Repeat("世", 5)
	shards := splitShards(message, 4)
	if len(shards) != 5 {
		t.Fatalf("len = %d, want 5", len(shards))
	}
	var rebuilt strings.Builder
	for i, s := range shards {
		if !strings.HasPrefix(s, "世") {
			t.Errorf("shard %d = %q, rune was split", i, s)
		}
		rebuilt.WriteString(s)
	}
	if rebuilt.String() != message {
		t.Error("shards do not reassemble to the original message")
	}
}

func TestSendGroupMsgDegradedResend(t *testing.T) {
	g := newTestGateway()

	var mu sync.Mutex
	var shards []protocol.SendMsgRequest
	g.on(protocol.CmdSendGroupMsg, func(body []byte) *protocol.WireResult {
		var req protocol.SendMsgRequest
		if err := protocol.Unmarshal(body, &req); err != nil {
			return &protocol.WireResult{Code: 500, Message: err.Error()}
		}
		if req.ShardCount == 0 {
			return &protocol.WireResult{Code: protocol.WireCodeMsgTooLong, Message: "message too long"}
		}
		mu.Lock()
		shards = append(shards, req)
		mu.Unlock()
		return okResult(&protocol.SendMsgResponse{MessageID: "m-sharded"})
	})

	c := newTestClient(t, g)
	mustLogin(t, c)

	message := strings.Repeat("a", maxShardBytes*2+100) // 3 shards
	ret := c.SendGroupMsg(context.Background(), 100, message)
	if !ret.OK() {
		t.Fatalf("SendGroupMsg = %+v", ret)
	}
	if body, ok := ret.Data.(*protocol.SendMsgResponse); !ok || body.MessageID != "m-sharded" {
		t.Errorf("data = %+v", ret.Data)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(shards) != 3 {
		t.Fatalf("shards = %d, want 3", len(shards))
	}
	var rebuilt strings.Builder
	for i, req := range shards {
		if req.Shard != i || req.ShardCount != 3 {
			t.Errorf("shard %d numbering = %d/%d", i, req.Shard, req.ShardCount)
		}
		if len(req.Message) > maxShardBytes {
			t.Errorf("shard %d is %d bytes, over the limit", i, len(req.Message))
		}
		if req.TargetID != 100 || req.Kind != protocol.MsgGroup {
			t.Errorf("shard %d addressing = %+v", i, req)
		}
		rebuilt.WriteString(req.Message)
	}
	if rebuilt.String() != message {
		t.Error("shards do not reassemble to the original message")
	}
}

func TestSendGroupMsgResendDisabled(t *testing.T) {
	g := newTestGateway()
	g.on(protocol.CmdSendGroupMsg, func([]byte) *protocol.WireResult {
		return &protocol.WireResult{Code: protocol.WireCodeThrottled, Message: "risk control"}
	})

	c := newTestClient(t, g, WithResend(false))
	mustLogin(t, c)

	ret := c.SendGroupMsg(context.Background(), 100, "hello")
	if ret.Retcode != RetFailed {
		t.Fatalf("Retcode = %d, want %d", ret.Retcode, RetFailed)
	}
	if ret.Error == nil || ret.Error.Code != protocol.WireCodeThrottled {
		t.Errorf("Error = %+v", ret.Error)
	}
}

func TestSendPrivateMsgAsyncAcceptance(t *testing.T) {
	g := newTestGateway()
	g.on(protocol.CmdSendPrivateMsg, func([]byte) *protocol.WireResult {
		raw, _ := protocol.Marshal(&protocol.SendMsgResponse{MessageID: "m-async"})
		return &protocol.WireResult{Code: protocol.WireCodeAsync, Body: raw}
	})

	c := newTestClient(t, g)
	mustLogin(t, c)

	ret := c.SendPrivateMsg(context.Background(), 42, "hello")
	if ret.Retcode != RetAsync {
		t.Fatalf("Retcode = %d, want %d", ret.Retcode, RetAsync)
	}
	if body, ok := ret.Data.(*protocol.SendMsgResponse); !ok || body.MessageID != "m-async" {
		t.Errorf("data = %+v", ret.Data)
	}
}

func TestGetMsg(t *testing.T) {
	g := newTestGateway()
	g.on(protocol.CmdGetMsg, func(body []byte) *protocol.WireResult {
		var req protocol.MsgRefRequest
		if err := protocol.Unmarshal(body, &req); err != nil {
			return &protocol.WireResult{Code: 500, Message: err.Error()}
		}
		return okResult(&protocol.StoredMsg{MessageID: req.MessageID, SenderID: 42, Message: "stored"})
	})

	c := newTestClient(t, g)
	mustLogin(t, c)

	ret := c.GetMsg(context.Background(), "m7")
	if !ret.OK() {
		t.Fatalf("GetMsg = %+v", ret)
	}
	msg, ok := ret.Data.(*protocol.StoredMsg)
	if !ok || msg.MessageID != "m7" || msg.Message != "stored" {
		t.Errorf("data = %+v", ret.Data)
	}
}
