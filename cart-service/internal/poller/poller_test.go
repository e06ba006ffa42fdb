package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/tradecart/cart-service/internal/store"
	"github.com/fjod/tradecart/cart-service/pkg/cartapi"
	"github.com/fjod/tradecart/payment-service/pkg/paymentevents"
	"github.com/redis/go-redis/v9"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"go.uber.org/zap"
	"gotest.tools/v3/assert"
)

type fakeReader struct {
	mu       sync.Mutex
	messages []kafkaGo.Message
	closed   bool
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafkaGo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return kafkaGo.Message{}, context.Canceled
	}
	m := f.messages[0]
	f.messages = f.messages[1:]
	return m, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

type recordingClearer struct {
	cleared []string
	err     error
}

func (r *recordingClearer) Clear(_ context.Context, userID string) error {
	r.cleared = append(r.cleared, userID)
	return r.err
}

func message(t *testing.T, v any) kafkaGo.Message {
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return kafkaGo.Message{Value: raw}
}

func TestClearPaidCart_OnlySuccessEventsClear(t *testing.T) {
	reader := &fakeReader{messages: []kafkaGo.Message{
		message(t, paymentevents.Event{UserID: "u1", Status: "SUCCESS", OrderID: "o1"}),
		message(t, paymentevents.Event{UserID: "u2", Status: "FAILED"}),
		message(t, paymentevents.Event{UserID: "u3", Status: "PENDING"}),
		{Value: []byte("not json")},
		message(t, paymentevents.Event{Status: "SUCCESS"}),
	}}
	clearer := &recordingClearer{}
	p := NewPollerWithReader(clearer, reader, zap.NewNop())

	for i := 0; i < 5; i++ {
		p.clearPaidCart(context.Background())
	}

	assert.DeepEqual(t, []string{"u1"}, clearer.cleared)
}

func TestClearPaidCart_ClearErrorIsSwallowed(t *testing.T) {
	reader := &fakeReader{messages: []kafkaGo.Message{
		message(t, paymentevents.Event{UserID: "u1", Status: "SUCCESS"}),
	}}
	clearer := &recordingClearer{err: errors.New("redis down")}
	p := NewPollerWithReader(clearer, reader, zap.NewNop())

	p.clearPaidCart(context.Background())

	assert.Equal(t, 1, len(clearer.cleared))
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{}
	p := NewPollerWithReader(&recordingClearer{}, reader, zap.NewNop())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
	p.Close()
	assert.Assert(t, reader.closed)
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestPoller_ClearsCartFromKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	carts := store.NewRedisStore(client, time.Hour)

	broker, cleanupKafka := setupKafka(t)
	defer cleanupKafka()
	createTopic(t, broker, paymentevents.Topic)

	_, err := carts.Add(ctx, "123", cartapi.CartLine{ProductID: "p1", Source: cartapi.SourceExChina, Quantity: 1})
	require.NoError(t, err)

	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(broker),
		Topic:                  paymentevents.Topic,
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	msg := message(t, paymentevents.Event{
		MerchantTransactionID: "MT-1",
		OrderID:               "o1",
		UserID:                "123",
		Status:                "SUCCESS",
		OccurredAt:            time.Now().UTC(),
	})
	msg.Key = []byte("MT-1")
	require.NoError(t, w.WriteMessages(ctx, msg))
	w.Close()

	p := NewPoller(carts, zap.NewNop(), broker)
	defer p.Close()
	go p.Run(ctx)

	require.Eventually(t, func() bool {
		return !mr.Exists("cart:123")
	}, 15*time.Second, 500*time.Millisecond)
}
