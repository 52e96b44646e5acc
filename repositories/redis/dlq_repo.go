package redis

import (
	// Go Internal Packages
	"context"
	"encoding/json"

	// Local Packages
	models "tanda-go/models"

	// External Packages
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type DeadLetterQueue struct {
	client   *redis.Client
	logger   *zap.Logger
	listName string
}

func NewDeadLetterQueue(client *redis.Client, logger *zap.Logger) *DeadLetterQueue {
	return &DeadLetterQueue{client: client, logger: logger, listName: "tanda:failed-callbacks"}
}

// Send appends failed callbacks to the dead letter list, oldest first.
func (r *DeadLetterQueue) Send(ctx context.Context, records []models.FailedCallback) error {
	if len(records) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(records))
	for _, record := range records {
		jsonData, err := json.Marshal(record)
		if err != nil {
			r.logger.Error("failed to marshal failed callback", zap.String("kind", record.Kind), zap.Error(err))
			continue
		}
		values = append(values, jsonData)
	}
	if len(values) == 0 {
		return nil
	}

	if err := r.client.RPush(ctx, r.listName, values...).Err(); err != nil {
		return err
	}
	r.logger.Info("parked failed callbacks", zap.Int("count", len(values)))
	return nil
}

// Pending returns up to limit parked callbacks without removing them.
func (r *DeadLetterQueue) Pending(ctx context.Context, limit int64) ([]models.FailedCallback, error) {
	raw, err := r.client.LRange(ctx, r.listName, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]models.FailedCallback, 0, len(raw))
	for _, item := range raw {
		var record models.FailedCallback
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			r.logger.Warn("skipping unreadable dead letter", zap.Error(err))
			continue
		}
		out = append(out, record)
	}
	return out, nil
}
