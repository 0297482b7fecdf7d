package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"foresight/internal/domain/models"
	drepo "foresight/internal/domain/repository"
	"foresight/pkg/logger"
	"foresight/pkg/util"
)

// KafkaSource consumes raw tick messages from a topic. Message values are
// the same JSON shape the websocket source produces, with time accepted as
// RFC3339 or unix seconds.
type KafkaSource struct {
	brokers  []string
	topic    string
	groupID  string
	minBytes int
	maxBytes int
	logger   *logger.Logger
}

// NewKafkaSource creates the Kafka tick source.
func NewKafkaSource(brokers []string, topic, groupID string, minBytes, maxBytes int, lgr *logger.Logger) *KafkaSource {
	if groupID == "" {
		groupID = "foresight-stream"
	}
	if minBytes <= 0 {
		minBytes = 10e3
	}
	if maxBytes <= 0 {
		maxBytes = 10e6
	}
	return &KafkaSource{
		brokers:  brokers,
		topic:    topic,
		groupID:  groupID,
		minBytes: minBytes,
		maxBytes: maxBytes,
		logger:   lgr,
	}
}

func (s *KafkaSource) Name() string { return "kafka" }

// Run reads messages until ctx is cancelled.
func (s *KafkaSource) Run(ctx context.Context, out chan<- models.PriceRecord) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  s.brokers,
		Topic:    s.topic,
		GroupID:  s.groupID,
		MinBytes: s.minBytes,
		MaxBytes: s.maxBytes,
		MaxWait:  time.Second,
	})
	defer reader.Close()

	s.logger.Info("kafka source started",
		logger.String("topic", s.topic),
		logger.String("group", s.groupID))

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return ctx.Err()
			}
			return fmt.Errorf("kafka read: %w", err)
		}

		rec, err := decodeTick(msg.Value)
		if err != nil {
			s.logger.Warn("dropping malformed tick", logger.Error(err))
			continue
		}
		select {
		case out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func decodeTick(b []byte) (models.PriceRecord, error) {
	var m struct {
		Instrument string  `json:"instrument"`
		Time       string  `json:"time"`
		Bid        float64 `json:"bid"`
		Ask        float64 `json:"ask"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return models.PriceRecord{}, err
	}
	t, ok := util.ParseTime(m.Time)
	if !ok {
		return models.PriceRecord{}, fmt.Errorf("unparseable tick time %q", m.Time)
	}
	return models.NewQuote(m.Instrument, t, m.Bid, m.Ask)
}

var _ drepo.TickSource = (*KafkaSource)(nil)
