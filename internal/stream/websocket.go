package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"foresight/internal/domain/models"
	drepo "foresight/internal/domain/repository"
	"foresight/pkg/logger"
)

// WebsocketSource reads tick frames from a market-data websocket. Frames
// are JSON objects with instrument, time (RFC3339) and bid/ask fields; the
// same shape the tick store accepts. The source reconnects on read errors
// and only gives up when ctx is cancelled.
type WebsocketSource struct {
	url            string
	token          string
	instrument     string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *logger.Logger
}

// NewWebsocketSource creates the websocket tick source.
func NewWebsocketSource(url, token, instrument string, reconnectDelay, pingInterval time.Duration, lgr *logger.Logger) *WebsocketSource {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &WebsocketSource{
		url:            url,
		token:          token,
		instrument:     instrument,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         lgr,
	}
}

func (s *WebsocketSource) Name() string { return "websocket" }

type tickFrame struct {
	Instrument string  `json:"instrument"`
	Time       string  `json:"time"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
}

// Run streams ticks until ctx is cancelled, reconnecting on failure.
func (s *WebsocketSource) Run(ctx context.Context, out chan<- models.PriceRecord) error {
	for {
		if err := s.stream(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("websocket stream error, reconnecting", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *WebsocketSource) stream(ctx context.Context, out chan<- models.PriceRecord) error {
	u := s.url
	if s.token != "" {
		u = fmt.Sprintf("%s?token=%s", s.url, s.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	sub := map[string]string{"type": "subscribe", "instrument": s.instrument}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.instrument, err)
	}
	s.logger.Info("websocket subscribed", logger.String("instrument", s.instrument))

	// keepalive pings until the read loop returns
	pingCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("websocket read: %w", err)
		}

		var frame tickFrame
		if err := json.Unmarshal(b, &frame); err != nil {
			// non-tick frame (heartbeats, acks)
			continue
		}
		if frame.Instrument == "" || frame.Time == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, frame.Time)
		if err != nil {
			s.logger.Warn("dropping tick with bad timestamp", logger.String("time", frame.Time))
			continue
		}
		rec, err := models.NewQuote(frame.Instrument, t, frame.Bid, frame.Ask)
		if err != nil {
			s.logger.Warn("dropping invalid tick", logger.Error(err))
			continue
		}
		select {
		case out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var _ drepo.TickSource = (*WebsocketSource)(nil)
