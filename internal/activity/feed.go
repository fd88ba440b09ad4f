package activity

import (
	"encoding/json"
	"sync"

	"github.com/Astemirdum/library-frontend/pkg/kafka"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const DefaultFeedSize = 50

// Feed consumes the activity topic and keeps the newest events in memory
// for the librarian dashboard.
type Feed struct {
	mu     sync.RWMutex
	events []kafka.ActivityEvent
	size   int
	log    *zap.Logger
}

func NewFeed(size int, log *zap.Logger) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		size: size,
		log:  log.Named("feed"),
	}
}

func (f *Feed) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (f *Feed) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (f *Feed) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				f.log.Debug("message channel was closed")
				return nil
			}
			var ev kafka.ActivityEvent
			if err := json.Unmarshal(message.Value, &ev); err != nil {
				f.log.Warn("skip malformed event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}
			f.Add(ev)
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// Add appends ev, dropping the oldest event once the feed is full.
func (f *Feed) Add(ev kafka.ActivityEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	if over := len(f.events) - f.size; over > 0 {
		f.events = append(f.events[:0:0], f.events[over:]...)
	}
}

// Recent returns up to n events, newest first.
func (f *Feed) Recent(n int) []kafka.ActivityEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if n <= 0 || n > len(f.events) {
		n = len(f.events)
	}
	out := make([]kafka.ActivityEvent, 0, n)
	for i := len(f.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.events[i])
	}
	return out
}
