package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/yxlimo/paperhub/config"
	"github.com/yxlimo/paperhub/metrics"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// message 写进 Kafka 的事件包，定向事件带 user_id
type message struct {
	Event  string      `json:"event"`
	UserID string      `json:"user_id,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Publisher 把提交后的事件镜像到 Kafka，供其他后端消费。
// 写失败只记日志，不影响已提交的业务写入。
type Publisher struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

// NewPublisher brokers 未配置时返回 nil，调用方据此跳过镜像
func NewPublisher(cfg config.KafkaConfig, logger *logrus.Logger) *Publisher {
	if cfg.Brokers == "" || cfg.Topic == "" {
		return nil
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  splitBrokers(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Publisher{writer: writer, logger: logger}
}

func (p *Publisher) Broadcast(event string, payload interface{}) {
	p.publish(event, "", payload)
}

func (p *Publisher) ToUser(userID uuid.UUID, event string, payload interface{}) {
	p.publish(event, userID.String(), payload)
}

func (p *Publisher) publish(event, key string, payload interface{}) {
	value, err := json.Marshal(message{Event: event, UserID: key, Data: payload})
	if err != nil {
		p.logger.WithError(err).Error("marshal kafka event")
		return
	}
	if key == "" {
		key = event
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.logger.WithError(err).WithField("event", event).Warn("kafka publish failed")
		metrics.EventsPublished.WithLabelValues("kafka", event, "error").Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues("kafka", event, "ok").Inc()
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			out = append(out, b)
		}
	}
	return out
}
