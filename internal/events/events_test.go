package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoBrokersIsNop(t *testing.T) {
	p := New(nil, "user_events")
	_, ok := p.(Nop)
	require.True(t, ok)

	assert.NoError(t, p.Publish(context.Background(), "k", Event{Type: TypeUserLoggedIn}))
	assert.NoError(t, p.Close())
}

func TestNew_WithBrokers(t *testing.T) {
	p := New([]string{"kafka:9092"}, "user_events")
	kp, ok := p.(*KafkaPublisher)
	require.True(t, ok)
	assert.Equal(t, "user_events", kp.writer.Topic)
	assert.NoError(t, kp.Close())
}

func TestNew_WriterTunedForRequestPath(t *testing.T) {
	kp := NewKafkaPublisher([]string{"kafka:9092"}, "user_events")
	defer kp.Close()

	assert.Equal(t, 1, kp.writer.BatchSize)
	assert.LessOrEqual(t, kp.writer.BatchTimeout, 10*time.Millisecond)
	assert.LessOrEqual(t, kp.writer.MaxAttempts, 3)
	assert.Equal(t, PublishTimeout, kp.timeout)
}

func TestKafkaPublisher_UnreachableBrokerIsBounded(t *testing.T) {
	kp := NewKafkaPublisher([]string{"127.0.0.1:1"}, "user_events")
	defer kp.Close()

	start := time.Now()
	err := kp.Publish(context.Background(), "k", Event{Type: TypeUserLoggedIn})
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.Less(t, elapsed, 4*PublishTimeout)
}
