package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/resilience"
)

const (
	headerEventID  = "Nats-Msg-Id"
	headerOutcome  = "Shipdocs-Outcome"
	headerShipment = "Shipdocs-Shipment"
	queueGroup     = "ledger-workers"
)

// Queue carries upload events from the API to ledger workers.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	ClientName           string
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("nats subject is required")
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	name := options.ClientName
	if name == "" {
		name = "shipment-docs-tracker"
	}

	conn, err := nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishUploadEvent(ctx context.Context, event domain.UploadEvent) error {
	msg, err := encodeEvent(q.subject, event)
	if err != nil {
		return err
	}
	call := func(_ context.Context) error {
		if err := q.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

const drainTimeout = 5 * time.Second

// SubscribeUploadEvents blocks until ctx is done, then drains in-flight messages.
// Messages delivered during the drain still reach handler.
func (q *Queue) SubscribeUploadEvents(ctx context.Context, handler func(context.Context, domain.UploadEvent) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, queueGroup, deliverUploadEvent(ctx, handler))
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	deadline := time.Now().Add(drainTimeout)
	for sub.IsValid() {
		if time.Now().After(deadline) {
			return fmt.Errorf("nats drain subscription: timed out after %s", drainTimeout)
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil
}

// deliverUploadEvent decodes each message and hands it to handler. Handler
// contexts keep ctx's values but not its cancellation, so a drain after
// shutdown still records what was already delivered.
func deliverUploadEvent(ctx context.Context, handler func(context.Context, domain.UploadEvent) error) nats.MsgHandler {
	base := context.WithoutCancel(ctx)
	return func(msg *nats.Msg) {
		event, err := decodeEvent(msg)
		if err != nil {
			slog.Error("upload_event_decode_failed", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(base)
		defer cancel()
		if err := handler(handlerCtx, event); err != nil {
			slog.Error("upload_event_handler_failed", "event_id", event.ID, "shipment_id", event.ShipmentID, "error", err)
		}
	}
}

func encodeEvent(subject string, event domain.UploadEvent) (*nats.Msg, error) {
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode upload event", fmt.Errorf("event id is required"))
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal upload event: %w", err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = body
	msg.Header.Set(headerEventID, event.ID)
	msg.Header.Set(headerOutcome, string(event.Outcome))
	msg.Header.Set(headerShipment, event.ShipmentID)
	return msg, nil
}

func decodeEvent(msg *nats.Msg) (domain.UploadEvent, error) {
	var event domain.UploadEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return domain.UploadEvent{}, fmt.Errorf("unmarshal upload event: %w", err)
	}
	if event.ID == "" && msg.Header != nil {
		event.ID = msg.Header.Get(headerEventID)
	}
	if event.ID == "" {
		return domain.UploadEvent{}, fmt.Errorf("upload event without id")
	}
	return event, nil
}
