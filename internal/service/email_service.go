package service

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/proteq/go-email-service/internal/domain"
	"github.com/proteq/go-email-service/internal/metrics"
	"github.com/proteq/go-email-service/internal/quota"
	"github.com/proteq/go-email-service/internal/shared/config"
	"github.com/proteq/go-email-service/internal/shared/errors"
	"github.com/proteq/go-email-service/internal/shared/logger"
	"github.com/proteq/go-email-service/internal/template"
	"github.com/proteq/go-email-service/internal/validation"
)

// Transport delivers a finished message. Satisfied by the SMTP pool and by
// fakes in tests.
type Transport interface {
	Send(from, to string, msg []byte) error
}

// EmailLogStore persists delivery attempts. Satisfied by the Mongo
// repository.
type EmailLogStore interface {
	Create(ctx context.Context, log *domain.EmailLog) error
}

// EmailService validates and delivers single templated emails
type EmailService struct {
	config    config.SMTPConfig
	transport Transport
	logs      EmailLogStore
	templates *template.Resolver
	quota     *quota.Tracker
	log       *logger.Logger
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.SMTPConfig, transport Transport, logs EmailLogStore, templates *template.Resolver, tracker *quota.Tracker, log *logger.Logger) *EmailService {
	return &EmailService{
		config:    cfg,
		transport: transport,
		logs:      logs,
		templates: templates,
		quota:     tracker,
		log:       log,
	}
}

// Send validates, renders and delivers one email. The returned message ID
// identifies the delivery in logs and the send log collection.
func (s *EmailService) Send(ctx context.Context, req *domain.SendEmailRequest, source domain.SendSource) (string, *errors.AppError) {
	validation.SanitizeSingle(req)
	if appErr := validation.ValidateSingle(req); appErr != nil {
		return "", appErr
	}

	if appErr := s.quota.Allow(1); appErr != nil {
		return "", appErr
	}

	return s.deliver(ctx, req, source)
}

// deliver renders and transmits one already-validated email, recording the
// attempt and quota usage. Shared by the single-send path and the bulk
// orchestrator, which authorizes its whole batch up front.
func (s *EmailService) deliver(ctx context.Context, req *domain.SendEmailRequest, source domain.SendSource) (string, *errors.AppError) {
	html, err := s.templates.Render(req.Template, template.Stringify(req.Variables))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return "", appErr
		}
		return "", errors.NewInternalError("Erro ao renderizar template", err)
	}

	messageID := s.newMessageID()
	start := time.Now()
	sendErr := s.transport.Send(s.config.FromEmail, req.To, s.buildMessage(req.To, req.Subject, html, messageID))
	metrics.SendDuration.WithLabelValues(req.Template).Observe(time.Since(start).Seconds())

	if sendErr != nil {
		appErr := errors.FromSMTP(sendErr)
		s.log.Error("Email delivery failed",
			"recipient", req.To, "template", req.Template, "code", appErr.Code, "error", sendErr)
		metrics.EmailsSent.WithLabelValues(req.Template, string(domain.SendStatusFailed)).Inc()
		s.record(ctx, messageID, req, domain.SendStatusFailed, source, appErr.Message, nil)
		return "", appErr
	}

	now := time.Now()
	s.log.Info("Email sent", "recipient", req.To, "template", req.Template, "messageId", messageID)
	metrics.EmailsSent.WithLabelValues(req.Template, string(domain.SendStatusSent)).Inc()
	s.quota.Record(1)
	s.record(ctx, messageID, req, domain.SendStatusSent, source, "", &now)

	return messageID, nil
}

// Preview renders a template without sending
func (s *EmailService) Preview(req *domain.PreviewRequest) (string, *errors.AppError) {
	validation.SanitizePreview(req)
	if appErr := validation.ValidatePreview(req); appErr != nil {
		return "", appErr
	}

	html, err := s.templates.Render(req.Template, template.Stringify(req.Variables))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return "", appErr
		}
		return "", errors.NewInternalError("Erro ao renderizar template", err)
	}
	return html, nil
}

// Quota exposes current ceiling usage for the statistics endpoint
func (s *EmailService) Quota() quota.Usage {
	return s.quota.Snapshot()
}

func (s *EmailService) record(ctx context.Context, messageID string, req *domain.SendEmailRequest, status domain.SendStatus, source domain.SendSource, errMsg string, sentAt *time.Time) {
	if s.logs == nil {
		return
	}

	entry := &domain.EmailLog{
		MessageID: messageID,
		Recipient: req.To,
		Subject:   req.Subject,
		Template:  req.Template,
		Status:    status,
		Source:    source,
		Error:     errMsg,
		SentAt:    sentAt,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.log.Warn("Failed to persist email log", "messageId", messageID, "error", err)
	}
}

func (s *EmailService) newMessageID() string {
	host := s.config.Host
	if at := strings.LastIndex(s.config.FromEmail, "@"); at >= 0 {
		host = s.config.FromEmail[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
}

// buildMessage assembles the raw RFC 5322 message with the mailer headers
// expected by receiving filters
func (s *EmailService) buildMessage(to, subject, html, messageID string) []byte {
	from := s.config.FromEmail
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.config.FromName), s.config.FromEmail)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("X-Priority: 3\r\n")
	b.WriteString("X-MSMail-Priority: Normal\r\n")
	b.WriteString("X-Mailer: Financial Manager System\r\n")
	b.WriteString("X-MimeOLE: Produced By Financial Manager\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)

	return []byte(b.String())
}
