package notify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/domain"
)

type recordingSender struct {
	events []Event
	err    error
}

func (s *recordingSender) Name() string { return "recording" }

func (s *recordingSender) Send(_ context.Context, event Event) error {
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSender) Close() error { return nil }

func sampleOrder(note *string) (domain.Order, []domain.OrderItem) {
	order := domain.Order{
		ID:           "ord-1",
		CustomerName: "Ana",
		Phone:        "0641234567",
		Address:      "Main 1",
		City:         "Beograd",
		Note:         note,
		TotalCents:   5550,
		Status:       domain.OrderStatusNew,
	}
	items := []domain.OrderItem{
		{VariantID: "V1", Quantity: 2, PriceAtPurchaseCents: 2000, Name: "Košulja", Size: "M"},
		{VariantID: "V2", Quantity: 1, PriceAtPurchaseCents: 1550, Name: "Kapa", Size: "UNI"},
	}
	return order, items
}

func TestBuildOrderPlaced(t *testing.T) {
	order, items := sampleOrder(nil)
	now := time.Date(2026, 3, 7, 14, 5, 9, 0, time.UTC)

	msg := BuildOrderPlaced(order, items, now)

	assert.Equal(t, OrderPlacedMessage{
		OrderID:         "ord-1",
		CustomerName:    "Ana",
		CustomerPhone:   "0641234567",
		CustomerAddress: "Main 1, Beograd",
		CustomerNote:    "Nema napomene",
		ItemsList:       "- Košulja (M) x2 - €40.00\n- Kapa (UNI) x1 - €15.50",
		Total:           "€55.50",
		OrderDate:       "7.3.2026. 14:05:09",
	}, msg)
}

func TestBuildOrderPlacedKeepsNote(t *testing.T) {
	note := "Zvoniti dva puta"
	order, items := sampleOrder(&note)
	assert.Equal(t, note, BuildOrderPlaced(order, items, time.Now()).CustomerNote)

	blank := "  "
	order, items = sampleOrder(&blank)
	assert.Equal(t, "Nema napomene", BuildOrderPlaced(order, items, time.Now()).CustomerNote)
}

func TestNotifierOrderPlaced(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, nil)
	n.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	order, items := sampleOrder(nil)

	require.NoError(t, n.OrderPlaced(context.Background(), order, items))

	require.Len(t, sender.events, 1)
	event := sender.events[0]
	assert.Equal(t, KindOrderPlaced, event.Kind)
	assert.Equal(t, "ord-1", event.OrderID)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"items_list":"- Košulja (M) x2 - €40.00\n- Kapa (UNI) x1 - €15.50"`), string(raw))
}

func TestNotifierStatusChanged(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, nil)
	order, _ := sampleOrder(nil)

	require.NoError(t, n.StatusChanged(context.Background(), order, domain.OrderStatusShipped))

	require.Len(t, sender.events, 1)
	msg, ok := sender.events[0].Payload.(StatusChangedMessage)
	require.True(t, ok)
	assert.Equal(t, domain.OrderStatusShipped, msg.Status)
}

func TestNotifierReturnsSenderError(t *testing.T) {
	boom := errors.New("broker unreachable")
	n := NewNotifier(&recordingSender{err: boom}, nil)
	order, items := sampleOrder(nil)

	assert.ErrorIs(t, n.OrderPlaced(context.Background(), order, items), boom)
}

func TestNilSenderFallsBackToLog(t *testing.T) {
	n := NewNotifier(nil, nil)
	order, items := sampleOrder(nil)
	assert.NoError(t, n.OrderPlaced(context.Background(), order, items))
	assert.NoError(t, n.Close())
}

func TestSenderFromConfig(t *testing.T) {
	s, err := SenderFromConfig(config.NotifyConfig{Driver: "none"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "log", s.Name())

	s, err = SenderFromConfig(config.NotifyConfig{Driver: "kafka", KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "kafka", s.Name())
	require.NoError(t, s.Close())

	_, err = SenderFromConfig(config.NotifyConfig{Driver: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestAMQPSenderPublishes(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL not set")
	}
	pool, err := NewChannelPool(url, "storefront_test_notifications", 2, nil)
	require.NoError(t, err)
	sender := NewAMQPSender(pool, "storefront_test_notifications")
	defer sender.Close()

	order, items := sampleOrder(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, NewNotifier(sender, nil).OrderPlaced(ctx, order, items))
}
