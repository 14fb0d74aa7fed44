package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const reconciliationQueue = "rental.reconciliation"

// ReconciliationPublisher publica compensações que falharam definitivamente
// para reparo manual pelos operadores
type ReconciliationPublisher interface {
	PublishCompensationFailure(ctx context.Context, compErr *CompensationError) error
}

// AMQPReconciliationPublisher implementa ReconciliationPublisher usando RabbitMQ
type AMQPReconciliationPublisher struct {
	ch *amqp.Channel
}

// NewAMQPReconciliationPublisher conecta ao RabbitMQ e declara a fila de reconciliação
func NewAMQPReconciliationPublisher(url string) (*AMQPReconciliationPublisher, error) {
	var conn *amqp.Connection
	var err error

	// Simple retry logic for container startup
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Printf("⏳ Waiting for RabbitMQ (attempt %d): %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		reconciliationQueue, // name
		true,                // durable
		false,               // auto-delete
		false,               // exclusive
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("could not declare reconciliation queue: %w", err)
	}

	return &AMQPReconciliationPublisher{ch: ch}, nil
}

// PublishCompensationFailure publica o evento com todos os handles necessários
// para a reconciliação administrativa
func (p *AMQPReconciliationPublisher) PublishCompensationFailure(ctx context.Context, compErr *CompensationError) error {
	body, err := json.Marshal(compErr)
	if err != nil {
		return fmt.Errorf("could not marshal compensation failure: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		"",                  // exchange
		reconciliationQueue, // routing key
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   uuid.New().String(),
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
}

// NoopReconciliationPublisher é usado quando o RabbitMQ não está configurado;
// a falha de compensação é apenas registrada nos logs.
type NoopReconciliationPublisher struct{}

func (NoopReconciliationPublisher) PublishCompensationFailure(_ context.Context, compErr *CompensationError) error {
	log.Printf("❌ [RECONCILIATION] No queue configured, manual repair required: %s", compErr.Error())
	return nil
}
