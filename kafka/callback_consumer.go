package kafka

import (
	// Go Internal Packages
	"context"
	"errors"
	"time"

	// Local Packages
	models "tanda-go/models"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers        []string
	Name           string
	Topic          string
	RecordsPerPoll int
	RetryBackoff   time.Duration
}

// GroupClient is the part of *kgo.Client the poll loop uses.
type GroupClient interface {
	PollRecords(ctx context.Context, maxPollRecords int) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	SetOffsets(setOffsets map[string]map[int32]kgo.EpochOffset)
	AllowRebalance()
	Close()
}

type Consumer struct {
	Client    GroupClient
	Config    *ConsumerConfig
	Processor CallbackProcessor
	Logger    *zap.Logger
}

type CallbackProcessor interface {
	ProcessRecords(ctx context.Context, records []models.Record) error
}

// NewCallbackConsumer creates a consumer group member for the callback topic
// (PS: Must call Poll to start consuming the records)
func NewCallbackConsumer(conf *ConsumerConfig, processor CallbackProcessor, metrics *kprom.Metrics, logger *zap.Logger) (*Consumer, error) {
	c := &Consumer{Config: conf, Processor: processor, Logger: logger}

	opts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...),
		kgo.ConsumerGroup(conf.Name),
		kgo.ConsumeTopics(conf.Topic),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
	}
	if metrics != nil {
		opts = append(opts, kgo.WithHooks(metrics))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	c.Client = client
	return c, nil
}

// Poll consumes until ctx is done. A batch is committed only once the
// processor accepted it, otherwise the partitions are rewound to the batch
// start and it is fetched again.
func (c *Consumer) Poll(ctx context.Context) error {
	defer c.Client.Close()

	for {
		if ctx.Err() != nil {
			c.Logger.Warn("callback polling stopped: context canceled")
			return ctx.Err()
		}

		fetches := c.Client.PollRecords(ctx, c.Config.RecordsPerPoll)
		if fetches.IsClientClosed() {
			return errors.New("kafka client closed")
		}
		if errors.Is(fetches.Err0(), context.Canceled) {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.Logger.Error("fetch error", zap.String("topic", topic), zap.Int32("partition", partition), zap.Error(err))
		})

		fetched := fetches.Records()
		if len(fetched) == 0 {
			c.Client.AllowRebalance()
			continue
		}

		records := make([]models.Record, len(fetched))
		for idx, record := range fetched {
			records[idx] = models.Record{
				Key:   record.Key,
				Value: record.Value,
				Topic: record.Topic,
			}
		}

		if err := c.Processor.ProcessRecords(ctx, records); err != nil {
			c.Logger.Error("failed to process callbacks, retrying batch", zap.Int("count", len(records)), zap.Error(err))
			c.Client.SetOffsets(rewindOffsets(fetched))
			c.Client.AllowRebalance()
			if !sleep(ctx, c.Config.RetryBackoff) {
				return ctx.Err()
			}
			continue
		}

		if err := c.Client.CommitRecords(ctx, fetched...); err != nil {
			c.Logger.Error("failed to commit callbacks", zap.Error(err))
		}
		c.Client.AllowRebalance()
	}
}

// rewindOffsets maps every partition in the batch to its first record.
func rewindOffsets(records []*kgo.Record) map[string]map[int32]kgo.EpochOffset {
	offsets := make(map[string]map[int32]kgo.EpochOffset)
	for _, record := range records {
		partitions, ok := offsets[record.Topic]
		if !ok {
			partitions = make(map[int32]kgo.EpochOffset)
			offsets[record.Topic] = partitions
		}
		if current, ok := partitions[record.Partition]; ok && current.Offset <= record.Offset {
			continue
		}
		partitions[record.Partition] = kgo.EpochOffset{Epoch: record.LeaderEpoch, Offset: record.Offset}
	}
	return offsets
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
