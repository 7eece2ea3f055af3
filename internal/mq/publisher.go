package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений конвейера.
const (
	MessageTypeRunPending   MessageType = "run.pending"
	MessageTypeJobReady     MessageType = "job.ready"
	MessageTypeJobCompleted MessageType = "job.completed"
)

// Message — конверт сообщения: тип, нагрузка и метаданные.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// RunPendingPayload — создан запуск, план ещё не построен.
type RunPendingPayload struct {
	RunID uuid.UUID `json:"run_id"`
}

// JobReadyPayload — узел плана готов к выполнению.
type JobReadyPayload struct {
	JobID uuid.UUID `json:"job_id"`
	RunID uuid.UUID `json:"run_id"`
}

// JobCompletedPayload — воркер завершил узел.
// NodeID — идентификатор узла в плане запуска; оркестратор по нему
// отмечает узел выполненным и будит зависимые.
type JobCompletedPayload struct {
	JobID   uuid.UUID `json:"job_id"`
	RunID   uuid.UUID `json:"run_id"`
	NodeID  string    `json:"node_id"`
	Status  string    `json:"status"` // SUCCEEDED или FAILED
	Error   string    `json:"error,omitempty"`
	Attempt int       `json:"attempt"`
}

// Publisher публикует события конвейера в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher поверх соединения.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// Publish публикует сообщение в exchange с ключом маршрутизации.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishRunPending публикует событие о новом запуске.
// Потребитель: оркестратор.
func (p *Publisher) PublishRunPending(ctx context.Context, runID uuid.UUID) error {
	return p.Publish(ctx, ExchangeRuns, RoutingKeyPending, envelope(
		MessageTypeRunPending, RunPendingPayload{RunID: runID}))
}

// PublishJobReady публикует событие о готовом к выполнению узле.
// Потребитель: воркер.
func (p *Publisher) PublishJobReady(ctx context.Context, jobID, runID uuid.UUID) error {
	return p.Publish(ctx, ExchangeJobs, RoutingKeyReady, envelope(
		MessageTypeJobReady, JobReadyPayload{JobID: jobID, RunID: runID}))
}

// PublishJobCompleted публикует событие о завершённом узле.
// Потребитель: оркестратор.
func (p *Publisher) PublishJobCompleted(ctx context.Context, payload JobCompletedPayload) error {
	return p.Publish(ctx, ExchangeJobs, RoutingKeyCompleted, envelope(
		MessageTypeJobCompleted, payload))
}

func envelope(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}
