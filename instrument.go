package mirage

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mirageim/mirage-go/pkg/correlator"
	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/session"
)

const tracerName = "github.com/mirageim/mirage-go"

// roundTrip submits one operation through the session gate, recording
// an outcome metric and, when tracing is enabled, a span per
// operation.
func (c *Client) roundTrip(ctx context.Context, cmd protocol.Command, body any) (*protocol.WireResult, error) {
	var span trace.Span
	if c.cfg.EnableTracing {
		ctx, span = otel.Tracer(tracerName).Start(ctx, "mirage."+cmd.String(),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.Int64("mirage.account_id", c.AccountID),
				attribute.Int("mirage.command", int(cmd)),
			),
		)
		defer span.End()
	}

	start := time.Now()
	res, err := c.sess.Call(ctx, cmd, body)
	c.observeOp(cmd, res, err, time.Since(start))

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("mirage.result_code", res.Code))
		}
	}
	return res, err
}

func (c *Client) observeOp(cmd protocol.Command, res *protocol.WireResult, err error, elapsed time.Duration) {
	if c.stats == nil {
		return
	}
	c.stats.ObserveOp(cmd.String(), opOutcome(res, err), elapsed)
}

func opOutcome(res *protocol.WireResult, err error) string {
	switch {
	case err == nil:
		if res.Code == protocol.WireCodeOK || res.Code == protocol.WireCodeAsync {
			return "ok"
		}
		return "failed"
	case errors.Is(err, correlator.ErrTimeout):
		return "timeout"
	case errors.Is(err, session.ErrNotReady), errors.Is(err, correlator.ErrConnectionLost):
		return "offline"
	default:
		return "error"
	}
}
