package events

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

const DefaultForecastTopic = "route-forecasts"

// KafkaForecastPublisher emits every forecast cycle outcome as a JSON record
// keyed by session id, so one session's records stay ordered on a partition.
type KafkaForecastPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaForecastPublisher dials brokers with a synchronous, fully acknowledged producer.
// timeout bounds each broker round trip, since SendMessage does not observe a context.
func NewKafkaForecastPublisher(brokers []string, topic string, timeout time.Duration, log *logger.Logger) (*KafkaForecastPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are empty")
	}

	producer, err := sarama.NewSyncProducer(brokers, newProducerConfig(timeout))
	if err != nil {
		return nil, fmt.Errorf("create forecast producer: %w", err)
	}

	log.WithField("brokers", brokers).Info("forecast producer created")
	return NewKafkaForecastPublisherWithProducer(producer, topic, log), nil
}

const defaultProducerTimeout = 5 * time.Second

func newProducerConfig(timeout time.Duration) *sarama.Config {
	if timeout <= 0 {
		timeout = defaultProducerTimeout
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Producer.Timeout = timeout
	config.Net.DialTimeout = timeout
	config.Net.ReadTimeout = timeout
	config.Net.WriteTimeout = timeout
	return config
}

func NewKafkaForecastPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaForecastPublisher {
	if topic == "" {
		topic = DefaultForecastTopic
	}
	return &KafkaForecastPublisher{
		producer: producer,
		topic:    topic,
		log:      log.WithComponent("forecast_publisher"),
	}
}

func (p *KafkaForecastPublisher) Close() error { return p.producer.Close() }

func (p *KafkaForecastPublisher) Publish(ctx context.Context, sessionID string, status domain.ForecastStatus) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish forecast: %w", err)
	}

	payload, err := json.Marshal(newForecastEvent(sessionID, status))
	if err != nil {
		return fmt.Errorf("encode forecast event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(sessionID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte("correlation_id"), Value: []byte(uuid.NewString())},
			{Key: []byte("state"), Value: []byte(status.State)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send forecast event: %w", err)
	}

	p.log.WithField("session_id", sessionID).
		WithField("partition", partition).
		WithField("offset", offset).
		Debug("forecast event sent")
	return nil
}

type forecastEvent struct {
	SessionID string        `json:"session_id"`
	Cycle     uint64        `json:"cycle"`
	State     string        `json:"state"`
	ErrorCode string        `json:"error_code,omitempty"`
	Error     string        `json:"error,omitempty"`
	Forecast  *forecastBody `json:"forecast"`
}

type forecastBody struct {
	Segments                  []segmentBody `json:"segments"`
	TotalDistanceKm           float64       `json:"total_distance_km"`
	TotalBaselineDurationSec  float64       `json:"total_baseline_duration_s"`
	TotalPredictedDurationSec *float64      `json:"total_predicted_duration_s"`
	GeneratedAt               time.Time     `json:"generated_at"`
}

type segmentBody struct {
	From                 string   `json:"from"`
	To                   string   `json:"to"`
	BaselineDistanceKm   float64  `json:"baseline_distance_km"`
	BaselineDurationSec  float64  `json:"baseline_duration_s"`
	PredictedDurationSec *float64 `json:"predicted_duration_s"`
}

func newForecastEvent(sessionID string, st domain.ForecastStatus) forecastEvent {
	ev := forecastEvent{
		SessionID: sessionID,
		Cycle:     st.Cycle,
		State:     string(st.State),
		ErrorCode: string(st.ErrorCode),
	}
	if st.Err != nil {
		ev.Error = st.Err.Error()
	}

	if f := st.Forecast; f != nil {
		body := &forecastBody{
			Segments:                  make([]segmentBody, 0, len(f.Segments)),
			TotalDistanceKm:           f.TotalDistanceKm,
			TotalBaselineDurationSec:  f.TotalBaselineDurationSec,
			TotalPredictedDurationSec: f.TotalPredictedDurationSec,
			GeneratedAt:               f.GeneratedAt,
		}
		for _, s := range f.Segments {
			body.Segments = append(body.Segments, segmentBody{
				From:                 s.From.Label,
				To:                   s.To.Label,
				BaselineDistanceKm:   s.BaselineDistanceKm,
				BaselineDurationSec:  s.BaselineDurationSec,
				PredictedDurationSec: s.PredictedDurationSec,
			})
		}
		ev.Forecast = body
	}
	return ev
}
