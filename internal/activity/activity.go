package activity

import (
	"encoding/json"
	"time"

	"github.com/Astemirdum/library-frontend/pkg/kafka"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type Logger interface {
	Log(ev kafka.ActivityEvent) error
}

type activityLog struct {
	producer sarama.AsyncProducer
	topic    string
	now      func() time.Time
}

// NewLog publishes activity events to topic. A nil producer gives a log
// that drops everything, so the front end runs without a broker.
func NewLog(producer sarama.AsyncProducer, topic string, log *zap.Logger) *activityLog {
	if producer == nil {
		return nil
	}
	go func() {
		for perr := range producer.Errors() {
			log.Warn("activity event not delivered", zap.Error(perr.Err))
		}
	}()
	return &activityLog{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

func (l *activityLog) Log(ev kafka.ActivityEvent) error {
	if l == nil {
		return nil
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = l.now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: l.topic, Value: sarama.StringEncoder(data)}
	l.producer.Input() <- msg
	return nil
}

type nop struct{}

func (nop) Log(kafka.ActivityEvent) error { return nil }

// Nop drops every event.
func Nop() Logger { return nop{} }
