package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type Config struct {
	Addrs         []string `envconfig:"KAFKA_ADDRS"`
	ActivityTopic string   `envconfig:"KAFKA_ACTIVITY_TOPIC" default:"library-activity"`
	FeedGroup     string   `envconfig:"KAFKA_FEED_GROUP" default:"library-frontend-feed"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

type EventType string

const (
	EventLogin     EventType = "LOGIN"
	EventLogout    EventType = "LOGOUT"
	EventReserve   EventType = "RESERVE"
	EventReturn    EventType = "RETURN"
	EventBlacklist EventType = "BLACKLIST"
)

// ActivityEvent is one user action seen by the front end.
type ActivityEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	UserID        int64     `json:"userId"`
	Email         string    `json:"email,omitempty"`
	EventType     EventType `json:"eventType"`
	ReservationID int64     `json:"reservationId,omitempty"`
	BookID        int64     `json:"bookId,omitempty"`
	Days          int       `json:"days,omitempty"`
	// TargetID is the account a librarian acted on.
	TargetID      int64     `json:"targetId,omitempty"`
}

func NewAsyncProducer(cfg Config) (sarama.AsyncProducer, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Producer.RequiredAcks = sarama.WaitForLocal
	defaultCfg.Producer.Return.Errors = true
	defaultCfg.Producer.Return.Successes = false

	return sarama.NewAsyncProducer(cfg.Addrs, defaultCfg)
}

func CreateTopics(cfg Config) error {
	admin, err := sarama.NewClusterAdmin(cfg.Addrs, sarama.NewConfig())
	if err != nil {
		return err
	}
	defer admin.Close()

	err = admin.CreateTopic(cfg.ActivityTopic, &sarama.TopicDetail{
		NumPartitions:     1,
		ReplicationFactor: 1,
	}, false)
	if err != nil {
		var terr *sarama.TopicError
		if errors.As(err, &terr) && terr.Err == sarama.ErrTopicAlreadyExists {
			return nil
		}
		return err
	}
	return nil
}

func NewConsumerGroup(cfg Config) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	return sarama.NewConsumerGroup(cfg.Addrs, cfg.FeedGroup, defaultCfg)
}

// Consume runs handler over topics until ctx is done or the group is closed.
// Consume returns on every rebalance, so it is called in a loop.
func Consume(ctx context.Context, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, log *zap.Logger, topics ...string) {
	for {
		if err := group.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			log.Warn("kafka consume", zap.Error(err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}
