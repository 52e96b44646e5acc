package processors

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"time"

	// Local Packages
	models "tanda-go/models"
	results "tanda-go/services/results"

	// External Packages
	"go.uber.org/zap"
)

type Reconciler interface {
	Handle(ctx context.Context, kind string, n models.Notification, raw []byte) (any, error)
}

type DeadLetterQueue interface {
	Send(ctx context.Context, records []models.FailedCallback) error
}

// CallbackProcessor reconciles callbacks relayed over the stream. The record
// key names the callback kind.
type CallbackProcessor struct {
	Logger     *zap.Logger
	Reconciler Reconciler
	DLQ        DeadLetterQueue
}

func NewCallbackProcessor(logger *zap.Logger, reconciler Reconciler, dlq DeadLetterQueue) *CallbackProcessor {
	return &CallbackProcessor{Logger: logger, Reconciler: reconciler, DLQ: dlq}
}

// ProcessRecords reconciles every record and parks the failures. It fails
// when a failure could not be parked, or there is nowhere to park it, so the
// batch is not committed.
func (p *CallbackProcessor) ProcessRecords(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	var failed []models.FailedCallback
	for _, record := range records {
		if err := p.ProcessRecord(ctx, record); err != nil {
			p.Logger.Error("failed to reconcile callback", zap.ByteString("kind", record.Key), zap.Error(err))
			failed = append(failed, models.FailedCallback{
				Kind:     string(record.Key),
				Topic:    record.Topic,
				Payload:  payload(record.Value),
				Error:    err.Error(),
				FailedAt: time.Now().UTC(),
			})
		}
	}

	if len(failed) == 0 {
		return nil
	}
	if p.DLQ == nil {
		return fmt.Errorf("%d callbacks failed and no dead letter queue is configured: %s", len(failed), failed[0].Error)
	}
	if err := p.DLQ.Send(ctx, failed); err != nil {
		return fmt.Errorf("failed to park %d callbacks: %w", len(failed), err)
	}
	return nil
}

func (p *CallbackProcessor) ProcessRecord(ctx context.Context, record models.Record) error {
	n, err := results.Decode(string(record.Key), record.Value)
	if err != nil {
		return err
	}

	rec, err := p.Reconciler.Handle(ctx, string(record.Key), n, record.Value)
	if err != nil {
		return err
	}
	if rec == nil {
		p.Logger.Warn("callback matched no record", zap.ByteString("kind", record.Key),
			zap.String("tracking_id", n.TrackingID), zap.String("reference", n.Reference))
	}
	return nil
}

// payload keeps valid JSON as is and quotes anything else so the dead letter
// stays decodable.
func payload(value []byte) json.RawMessage {
	if json.Valid(value) {
		return json.RawMessage(value)
	}
	quoted, _ := json.Marshal(string(value))
	return quoted
}
