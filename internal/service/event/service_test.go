package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/pkg/logger"
	"github.com/jwalitptl/shc-api/pkg/messaging/redis"
	"github.com/jwalitptl/shc-api/pkg/metrics"
)

func TestBrokerPublisher_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := redis.NewRedisBroker(ctx, redis.Config{URL: "redis://" + mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	defer broker.Close()

	m := metrics.New(prometheus.NewRegistry(), "test")
	pub := NewBrokerPublisher(broker, "shc", m, logger.Nop())
	assert.Equal(t, "shc.case.created", pub.Channel(CaseCreated))

	msgs, err := broker.Subscribe(ctx, pub.Channel(CaseCreated))
	require.NoError(t, err)

	c := &model.ExaminationCase{Base: model.Base{ID: uuid.New()}, HazardCode: "05", Grade: 3}
	pub.Publish(ctx, CaseEvent(CaseCreated, c))

	select {
	case raw := <-msgs:
		var got Event
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, CaseCreated, got.Type)
		assert.Equal(t, c.ID, got.CaseID)
		assert.Equal(t, "05", got.HazardCode)
		assert.Equal(t, 3, got.Grade)
		assert.False(t, got.At.IsZero())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("case.created", "ok")))
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

type failingBroker struct{ calls int }

func (b *failingBroker) Publish(context.Context, string, interface{}) error {
	b.calls++
	return errors.New("down")
}
func (b *failingBroker) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }
func (b *failingBroker) Close() error                                             { return nil }

func TestBrokerPublisher_SwallowsErrors(t *testing.T) {
	b := &failingBroker{}
	m := metrics.New(prometheus.NewRegistry(), "test")
	pub := NewBrokerPublisher(b, "", m, logger.Nop())
	assert.Equal(t, "case.deleted", pub.Channel(CaseDeleted))

	assert.NotPanics(t, func() {
		pub.Publish(context.Background(), Event{Type: CaseDeleted})
	})
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("case.deleted", "error")))
}
