//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"summit/internal/platform/config"
	"summit/internal/platform/kafka"
	"summit/pkg/testutil/containers"
)

type ProducerSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	producer *kafka.Producer
}

func TestProducerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerSuite))
}

func (s *ProducerSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redpanda = mgr.GetRedpanda(s.T())

	producer, err := kafka.New(config.KafkaConfig{Brokers: []string{s.redpanda.Broker}})
	s.Require().NoError(err)
	s.Require().NotNil(producer)
	s.producer = producer
}

func (s *ProducerSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *ProducerSuite) TestNewWithoutBrokersIsDisabled() {
	producer, err := kafka.New(config.KafkaConfig{})
	s.Require().NoError(err)
	s.Nil(producer)
}

func (s *ProducerSuite) TestHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Require().NoError(s.producer.Health(ctx))
}

// TestEnsureTopicIdempotent verifies EnsureTopic is safe on every startup,
// including when the topic already exists.
func (s *ProducerSuite) TestEnsureTopicIdempotent() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "summit.audit.ensure-test"
	s.Require().NoError(s.producer.EnsureTopic(ctx, topic, 1, 1))
	s.Require().NoError(s.producer.EnsureTopic(ctx, topic, 1, 1))
}

// TestSinkPublishRoundTrip verifies records published through the relay sink
// arrive on the topic with their key intact and in per-key order.
func (s *ProducerSuite) TestSinkPublishRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const topic = "summit.audit.roundtrip-test"
	s.Require().NoError(s.producer.EnsureTopic(ctx, topic, 1, 1))

	sink := s.producer.Sink(topic)
	payloads := [][]byte{
		[]byte(`{"kind":"delegate.registered"}`),
		[]byte(`{"kind":"delegate.approved"}`),
		[]byte(`{"kind":"delegate.checked_in"}`),
	}
	for _, payload := range payloads {
		s.Require().NoError(sink.Publish(ctx, "delegate-1", payload))
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var records []*kgo.Record
	for len(records) < len(payloads) {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(fetches.Err())
		records = append(records, fetches.Records()...)
	}

	s.Require().Len(records, len(payloads))
	for i, record := range records {
		s.Equal("delegate-1", string(record.Key))
		s.Equal(payloads[i], record.Value)
	}
}
