// Package events publica los movimientos aceptados en NATS JetStream para consumidores externos
// (tablero de ventas, respaldo contable). La publicación es asincrónica y nunca bloquea una operación de stock.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/aromas-stock/internal/application/ports"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

// SubjectPrefix los movimientos se publican en stock.movements.{kind}.
const SubjectPrefix = "stock.movements"

const defaultBuffer = 1024

// MovementEvent mensaje publicado por cada movimiento aceptado.
type MovementEvent struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	Branch        string           `json:"branch"`
	Destination   string           `json:"destination,omitempty"`
	Date          time.Time        `json:"date"`
	Lines         []EventLine      `json:"lines"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	SellerID      string           `json:"seller_id,omitempty"`
	FinalConsumer bool             `json:"final_consumer"`
	CreatedAt     time.Time        `json:"created_at"`
}

// EventLine producto y cantidad.
type EventLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// NewMovementEvent arma el mensaje. Las ventas informan su importe.
func NewMovementEvent(m *entity.Movement) MovementEvent {
	evt := MovementEvent{
		ID:            m.ID,
		Type:          string(m.Kind),
		Branch:        m.Branch,
		Destination:   m.Destination,
		Date:          m.Date,
		SellerID:      m.SellerID,
		FinalConsumer: m.FinalConsumer,
		CreatedAt:     m.CreatedAt,
	}
	for _, l := range m.Lines() {
		evt.Lines = append(evt.Lines, EventLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	if m.Kind == entity.MovementSell {
		amount := m.Amount()
		evt.Total = &amount
	}
	return evt
}

// Subject subject de un tipo de movimiento.
func Subject(kind string) string { return SubjectPrefix + "." + kind }

// streamPublisher subconjunto de jetstream.JetStream que usa el publicador.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

var _ ports.MovementPublisher = (*NATSPublisher)(nil)

// NATSPublisher encola los movimientos y los publica desde Run.
// Si la cola está llena el evento se descarta con un warning: el libro sigue siendo la fuente de verdad.
type NATSPublisher struct {
	js    streamPublisher
	queue chan MovementEvent
	log   zerolog.Logger
}

// NewNATSPublisher construye el publicador. buffer <= 0 usa el tamaño por defecto.
func NewNATSPublisher(js streamPublisher, buffer int, log zerolog.Logger) *NATSPublisher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &NATSPublisher{js: js, queue: make(chan MovementEvent, buffer), log: log}
}

// Publish implementa ports.MovementPublisher sin bloquear.
func (p *NATSPublisher) Publish(_ context.Context, m *entity.Movement) {
	select {
	case p.queue <- NewMovementEvent(m):
	default:
		p.log.Warn().Str("movement_id", m.ID).Msg("cola de eventos llena, evento descartado")
	}
}

// Run publica hasta que ctx se cancele.
func (p *NATSPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-p.queue:
			if err := p.publish(ctx, evt); err != nil {
				p.log.Warn().Err(err).Str("movement_id", evt.ID).Msg("publicación de evento fallida")
			}
		}
	}
}

func (p *NATSPublisher) publish(ctx context.Context, evt MovementEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.js.Publish(ctx, Subject(evt.Type), data, jetstream.WithMsgID(evt.ID))
	return err
}

// Connect conecta a NATS con reconexión indefinida y devuelve el contexto JetStream.
func Connect(url string, log zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.Name("aromas-stock"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS desconectado")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconectado")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return nc, js, nil
}

// EnsureStream crea o actualiza el stream que retiene stock.movements.>.
func EnsureStream(ctx context.Context, js jetstream.JetStream, name string) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{SubjectPrefix + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     30 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
		Replicas:   1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", name, err)
	}
	return nil
}
