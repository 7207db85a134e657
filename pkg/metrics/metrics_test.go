package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetRegistersAndCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	set := New(WithRegistry(registry))

	set.PacketSent()
	set.PacketSent()
	set.PacketRecv()
	set.MsgRecv()
	set.Reconnect()
	set.SetOnline(true)
	set.ObserveOp("SendGroupMsg", "ok", 5*time.Millisecond)
	set.ObserveOp("SendGroupMsg", "failed", 5*time.Millisecond)

	if got := testutil.ToFloat64(set.packetsSent); got != 2 {
		t.Errorf("packets_sent_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(set.online); got != 1 {
		t.Errorf("online = %v, want 1", got)
	}
	if got := testutil.ToFloat64(set.opsTotal.WithLabelValues("SendGroupMsg", "ok")); got != 1 {
		t.Errorf("operations_total{ok} = %v, want 1", got)
	}

	set.SetOnline(false)
	if got := testutil.ToFloat64(set.online); got != 0 {
		t.Errorf("online after SetOnline(false) = %v, want 0", got)
	}

	// Registration happened on the provided registry, not the default.
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("no metric families registered on the private registry")
	}
}

func TestNilSetIsSafe(t *testing.T) {
	var set *Set
	set.PacketSent()
	set.MsgSent()
	set.SetOnline(true)
	set.ObserveOp("Login", "ok", time.Millisecond)
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	// Two clients in one process must be able to hold their own sets.
	a := New(WithRegistry(prometheus.NewRegistry()), WithConstLabels(prometheus.Labels{"account": "1"}))
	b := New(WithRegistry(prometheus.NewRegistry()), WithConstLabels(prometheus.Labels{"account": "2"}))
	a.PacketSent()
	if got := testutil.ToFloat64(b.packetsSent); got != 0 {
		t.Errorf("cross-registry leak: %v", got)
	}
}
