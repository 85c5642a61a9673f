package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func createdEvent(email string) service.OrderCreatedEvent {
	pid := uint(3)
	return service.OrderCreatedEvent{
		Type:          service.EventOrderCreated,
		OrderID:       1,
		OrderNumber:   "ORD-1700000000000-K9Z2Q",
		CustomerName:  "Lina",
		CustomerEmail: email,
		PaymentMethod: models.PaymentMethodWishmoney,
		TotalAmount:   decimal.RequireFromString("45"),
		Items: []service.OrderItemEvent{
			{ProductID: &pid, ProductName: "Scarf", Quantity: 2, Price: decimal.RequireFromString("22.5"), Total: decimal.RequireFromString("45")},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestBuildNotification_OrderCreated(t *testing.T) {
	n, err := BuildNotification(mustJSON(t, createdEvent("lina@example.com")))
	require.NoError(t, err)

	assert.Equal(t, "lina@example.com", n.To)
	assert.Equal(t, "order_created", n.Template)
	assert.Contains(t, n.Subject, "ORD-1700000000000-K9Z2Q")
	assert.Equal(t, "45.00", n.Data["TotalAmount"])

	items, ok := n.Data["Items"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "22.50", items[0]["Price"])
}

func TestBuildNotification_SkipsWithoutEmail(t *testing.T) {
	_, err := BuildNotification(mustJSON(t, createdEvent("")))
	assert.True(t, errors.Is(err, ErrSkip))
}

func TestBuildNotification_StatusChanged(t *testing.T) {
	e := service.OrderStatusChangedEvent{
		Type:                  service.EventOrderStatusChanged,
		OrderNumber:           "ORD-1-AAAAA",
		CustomerName:          "Omar",
		CustomerEmail:         "omar@example.com",
		OrderStatus:           models.OrderStatusShipped,
		PaymentStatus:         models.PaymentStatusPending,
		PreviousOrderStatus:   models.OrderStatusProcessing,
		PreviousPaymentStatus: models.PaymentStatusPending,
	}
	n, err := BuildNotification(mustJSON(t, e))
	require.NoError(t, err)
	assert.Equal(t, "order_status_changed", n.Template)
	assert.Equal(t, "shipped", n.Data["OrderStatus"])
	assert.Equal(t, true, n.Data["StatusChanged"])
}

func TestBuildNotification_UnknownType(t *testing.T) {
	_, err := BuildNotification([]byte(`{"type":"order.deleted"}`))
	assert.Error(t, err)

	_, err = BuildNotification([]byte(`not json`))
	assert.Error(t, err)
}

func TestEmailSender_BuildMessage_RendersTemplates(t *testing.T) {
	s := NewEmailSender(SMTPConfig{From: "shop@example.com"}, "../../templates")

	n, err := BuildNotification(mustJSON(t, createdEvent("lina@example.com")))
	require.NoError(t, err)

	m, err := s.BuildMessage(*n)
	require.NoError(t, err)
	assert.Equal(t, []string{"lina@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"shop@example.com"}, m.GetHeader("From"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ORD-1700000000000-K9Z2Q")
	assert.Contains(t, buf.String(), "Scarf")
}

func TestEmailSender_MissingTemplate(t *testing.T) {
	s := NewEmailSender(SMTPConfig{}, t.TempDir())
	_, err := s.BuildMessage(Notification{To: "x@example.com", Template: "nope"})
	assert.Error(t, err)
}

type recordingSender struct{ sent []Notification }

func (r *recordingSender) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func TestConsumerHandle_DispatchesToSender(t *testing.T) {
	rec := &recordingSender{}
	c := &OrderEventConsumer{sender: rec, log: zap.NewNop()}

	c.handle(mustJSON(t, createdEvent("lina@example.com")))
	c.handle(mustJSON(t, createdEvent("")))
	c.handle([]byte(`garbage`))

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "order_created", rec.sent[0].Template)
}

// scriptedReader отдаёт заранее заданные ответы, затем err
type scriptedReader struct {
	mu      sync.Mutex
	replies []readReply
	err     error
	calls   int
}

type readReply struct {
	value []byte
	err   error
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.replies) == 0 {
		return kafka.Message{}, r.err
	}
	next := r.replies[0]
	r.replies = r.replies[1:]
	return kafka.Message{Value: next.value}, next.err
}

func (r *scriptedReader) Close() error { return nil }

func (r *scriptedReader) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestConsumerRun_RetriesTransientErrorsAndStopsOnEOF(t *testing.T) {
	reader := &scriptedReader{
		replies: []readReply{
			{err: errors.New("broker unavailable")},
			{value: mustJSON(t, createdEvent("lina@example.com"))},
		},
		err: io.EOF,
	}
	rec := &recordingSender{}
	c := NewOrderEventConsumerWithReader(reader, rec, zap.NewNop())
	c.retryDelay = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after io.EOF")
	}
	assert.Equal(t, 3, reader.callCount())
	require.Len(t, rec.sent, 1)
}

func TestConsumerRun_StopsOnDeadline(t *testing.T) {
	reader := &scriptedReader{err: context.DeadlineExceeded}
	c := NewOrderEventConsumerWithReader(reader, &recordingSender{}, zap.NewNop())

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 1, reader.callCount())
}

func TestConsumerRun_WaitsBetweenFailedReads(t *testing.T) {
	reader := &scriptedReader{err: errors.New("connection refused")}
	c := NewOrderEventConsumerWithReader(reader, &recordingSender{}, zap.NewNop())
	c.retryDelay = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	require.NoError(t, c.Run(ctx))

	// без паузы цикл успел бы сделать тысячи попыток
	assert.LessOrEqual(t, reader.callCount(), 4)
}
