package kafka

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
)

func TestBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "env-1:9092, env-2:9092,")

	assert.Equal(t, []string{"explicit:9092"}, Brokers([]string{" explicit:9092 ", ""}))
	assert.Equal(t, []string{"env-1:9092", "env-2:9092"}, Brokers(nil))
}

func TestCreateChannel_NoBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")

	_, _, err := CreateChannel(watermill.NopLogger{}, "warden", nil)

	assert.ErrorIs(t, err, ErrNoBrokers)
}
