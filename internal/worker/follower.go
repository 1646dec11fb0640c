// Package worker follows the case events the API publishes on the message
// broker.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jwalitptl/shc-api/internal/service/event"
	"github.com/jwalitptl/shc-api/pkg/logger"
	"github.com/jwalitptl/shc-api/pkg/messaging"
	"github.com/jwalitptl/shc-api/pkg/metrics"
)

type FollowerConfig struct {
	ChannelPrefix string
	RetryAttempts int
	RetryDelay    time.Duration
}

// Follower subscribes to every case event channel and writes each event it
// receives to the log.
type Follower struct {
	broker  messaging.Broker
	config  FollowerConfig
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	subs   map[event.EventType]<-chan []byte
	cancel context.CancelFunc
}

func NewFollower(broker messaging.Broker, config FollowerConfig, logger *logger.Logger, metrics *metrics.Metrics) *Follower {
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	return &Follower{
		broker:  broker,
		config:  config,
		logger:  logger.WithFields(map[string]interface{}{"component": "follower"}),
		metrics: metrics,
	}
}

// Subscribe opens one subscription per event type. Events published after
// it returns are delivered to Run. If any subscription fails the ones
// already opened are closed again.
func (f *Follower) Subscribe(ctx context.Context) error {
	subCtx, cancel := context.WithCancel(ctx)
	subs := make(map[event.EventType]<-chan []byte, len(event.Types))
	for _, t := range event.Types {
		channel := event.Channel(f.config.ChannelPrefix, t)
		var msgs <-chan []byte
		err := retry(subCtx, f.config.RetryAttempts, f.config.RetryDelay, func() error {
			var err error
			msgs, err = f.broker.Subscribe(subCtx, channel)
			return err
		})
		if err != nil {
			cancel()
			return fmt.Errorf("failed to follow %s: %w", channel, err)
		}
		subs[t] = msgs
	}

	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.subs = subs
	f.cancel = cancel
	f.mu.Unlock()
	return nil
}

// Run handles events until ctx is done or every subscription has closed.
func (f *Follower) Run(ctx context.Context) {
	f.mu.Lock()
	subs, cancel := f.subs, f.cancel
	f.mu.Unlock()
	if cancel != nil {
		defer cancel()
	}

	f.logger.Info("event follower started", "channels", len(subs))

	var wg sync.WaitGroup
	for t, msgs := range subs {
		wg.Add(1)
		go func(t event.EventType, msgs <-chan []byte) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case payload, ok := <-msgs:
					if !ok {
						return
					}
					f.handle(t, payload)
				}
			}
		}(t, msgs)
	}
	wg.Wait()

	f.logger.Info("event follower stopped")
}

// Start subscribes and then runs until ctx is done.
func (f *Follower) Start(ctx context.Context) error {
	if err := f.Subscribe(ctx); err != nil {
		return err
	}
	f.Run(ctx)
	return nil
}

func (f *Follower) handle(channelType event.EventType, payload []byte) {
	var e event.Event
	if err := json.Unmarshal(payload, &e); err != nil {
		f.metrics.EventsReceived.WithLabelValues(string(channelType), "malformed").Inc()
		f.logger.Error(err, "failed to decode event", "type", string(channelType))
		return
	}
	f.metrics.EventsReceived.WithLabelValues(string(e.Type), "ok").Inc()

	switch e.Type {
	case event.ImportCompleted:
		f.logger.Info("import completed", "imported", e.Imported, "skipped", e.Skipped, "at", e.At)
	default:
		f.logger.Info("case event",
			"type", string(e.Type),
			"case_id", e.CaseID.String(),
			"hazard_code", e.HazardCode,
			"grade", e.Grade,
			"at", e.At)
	}
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
