package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

type published struct {
	subject string
	data    []byte
}

type fakeStream struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakeStream) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{subject: subject, data: payload})
	return &jetstream.PubAck{}, nil
}

func (f *fakeStream) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func sale() *entity.Movement {
	return &entity.Movement{
		ID:     "m1",
		Kind:   entity.MovementSell,
		Branch: entity.BranchSantaRosa,
		Date:   time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC),
		Payload: entity.MultiItem{Items: []entity.SaleItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
			{ProductID: "p2", Quantity: 1, UnitPrice: decimal.NewFromInt(900)},
		}},
	}
}

func TestNewMovementEvent_VentaInformaImporte(t *testing.T) {
	evt := NewMovementEvent(sale())
	assert.Equal(t, "sell", evt.Type)
	require.Len(t, evt.Lines, 2)
	require.NotNil(t, evt.Total)
	assert.True(t, decimal.NewFromInt(3900).Equal(*evt.Total))

	add := NewMovementEvent(&entity.Movement{ID: "m2", Kind: entity.MovementAdd, Branch: entity.BranchMacachin,
		Payload: entity.SingleItem{ProductID: "p1", Quantity: 5}})
	assert.Nil(t, add.Total)
	assert.Equal(t, []EventLine{{ProductID: "p1", Quantity: 5}}, add.Lines)
}

func TestNATSPublisher_PublicaEnSubjectPorTipo(t *testing.T) {
	js := &fakeStream{}
	p := NewNATSPublisher(js, 4, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()

	p.Publish(ctx, sale())
	require.Eventually(t, func() bool { return js.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, "stock.movements.sell", js.msgs[0].subject)
	var evt MovementEvent
	require.NoError(t, json.Unmarshal(js.msgs[0].data, &evt))
	assert.Equal(t, "m1", evt.ID)
}

func TestNATSPublisher_ColaLlenaDescartaSinBloquear(t *testing.T) {
	p := NewNATSPublisher(&fakeStream{}, 1, zerolog.Nop())
	p.Publish(context.Background(), sale())
	p.Publish(context.Background(), sale()) // sin Run: la cola ya está llena
	assert.Len(t, p.queue, 1)
}
