package consumer

import (
	"context"
	"encoding/json"

	"github.com/proteq/go-email-service/internal/domain"
	"github.com/proteq/go-email-service/internal/service"
	"github.com/proteq/go-email-service/internal/shared/errors"
	"github.com/proteq/go-email-service/internal/shared/logger"
	"github.com/proteq/go-email-service/internal/shared/rabbitmq"
)

const (
	billingExchange   = "billing"
	billingQueue      = "email_billing_events"
	billingRoutingKey = "billing.*.*"
	consumerTag       = "email-service"
)

// defaultTemplates maps event types to the template used when the event
// does not name one
var defaultTemplates = map[domain.EventType]string{
	domain.EventPaymentOverdue:   "primeira-cobranca",
	domain.EventContactRequested: "solicitacao-contato",
}

// EventConsumer turns billing events from the broker into templated sends
// through the same delivery pipeline as the HTTP API
type EventConsumer struct {
	client       *rabbitmq.Client
	emailService *service.EmailService
	log          *logger.Logger
}

// NewEventConsumer creates a new event consumer
func NewEventConsumer(client *rabbitmq.Client, emailService *service.EmailService, log *logger.Logger) *EventConsumer {
	return &EventConsumer{
		client:       client,
		emailService: emailService,
		log:          log,
	}
}

// Start consumes billing events until the channel closes. Blocks; run in
// its own goroutine.
func (c *EventConsumer) Start(ctx context.Context) error {
	c.log.Info("Starting billing event consumer", "queue", billingQueue)

	messages, err := c.client.Subscribe(billingExchange, billingQueue, billingRoutingKey, consumerTag)
	if err != nil {
		c.log.Error("Failed to subscribe to billing events", "error", err)
		return err
	}

	for msg := range messages {
		var event domain.BillingEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			c.log.Error("Discarding malformed billing event", "routingKey", msg.RoutingKey, "error", err)
			msg.Nack(false)
			continue
		}

		if err := c.process(ctx, &event); err != nil {
			// Rejections and validation failures will not heal on retry;
			// transport errors might
			requeue := err.Code == errors.CodeSMTPConnection
			c.log.Error("Failed to process billing event",
				"type", event.Type, "code", err.Code, "requeue", requeue, "error", err)
			msg.Nack(requeue)
			continue
		}

		msg.Ack()
		c.log.Info("Billing event processed", "type", event.Type, "recipient", event.Recipient.Email)
	}

	c.log.Info("Billing event channel closed")
	return nil
}

func (c *EventConsumer) process(ctx context.Context, event *domain.BillingEvent) *errors.AppError {
	template := event.Template
	if template == "" {
		template = defaultTemplates[event.Type]
	}

	subject := event.Subject
	if subject == "" {
		subject = "Notificação de cobrança"
	}

	req := &domain.SendEmailRequest{
		To:        event.Recipient.Email,
		Subject:   subject,
		Template:  template,
		Variables: toAnyMap(event.Recipient.TemplateVariables()),
	}

	_, appErr := c.emailService.Send(ctx, req, domain.SendSourceEvent)
	return appErr
}

func toAnyMap(vars map[string]string) map[string]any {
	m := make(map[string]any, len(vars))
	for k, v := range vars {
		m[k] = v
	}
	return m
}
