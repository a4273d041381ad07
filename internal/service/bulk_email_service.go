package service

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/proteq/go-email-service/internal/domain"
	"github.com/proteq/go-email-service/internal/metrics"
	"github.com/proteq/go-email-service/internal/shared/errors"
	"github.com/proteq/go-email-service/internal/shared/logger"
	"github.com/proteq/go-email-service/internal/validation"
)

// BulkEmailService delivers one templated email to up to 50 recipients
// sequentially, pacing sends so the provider does not flag the batch as a
// burst.
type BulkEmailService struct {
	emailService *EmailService
	delay        time.Duration
	log          *logger.Logger
}

// NewBulkEmailService creates a new bulk email service. delay is the pause
// enforced between consecutive deliveries.
func NewBulkEmailService(emailService *EmailService, delay time.Duration, log *logger.Logger) *BulkEmailService {
	return &BulkEmailService{
		emailService: emailService,
		delay:        delay,
		log:          log,
	}
}

// SendBulk validates the batch, removes duplicate recipients and delivers
// to each remaining recipient in order. A rejected recipient does not
// abort the batch; its failure is reported in the per-recipient results.
func (s *BulkEmailService) SendBulk(ctx context.Context, req *domain.BulkEmailRequest) (*domain.BulkSendResult, *errors.AppError) {
	validation.SanitizeBulk(req)
	duplicatesRemoved, appErr := validation.ValidateBulk(req)
	if appErr != nil {
		return nil, appErr
	}

	if appErr := s.emailService.quota.Allow(len(req.Recipients)); appErr != nil {
		return nil, appErr
	}

	metrics.BulkBatchSize.Observe(float64(len(req.Recipients)))
	s.log.Info("Bulk send started",
		"recipients", len(req.Recipients), "template", req.Template, "duplicatesRemoved", duplicatesRemoved)

	result := &domain.BulkSendResult{
		Total:             len(req.Recipients),
		DuplicatesRemoved: duplicatesRemoved,
		Results:           make([]domain.DeliveryResult, 0, len(req.Recipients)),
	}

	// A fresh limiter holds one token, so the first send goes out
	// immediately and each subsequent one waits out the delay
	pacer := rate.NewLimiter(rate.Every(s.delay), 1)

	for i, recipient := range req.Recipients {
		if err := pacer.Wait(ctx); err != nil {
			s.log.Warn("Bulk send interrupted", "position", i, "error", err)
			for _, remaining := range req.Recipients[i:] {
				result.Results = append(result.Results, domain.DeliveryResult{
					Success:   false,
					Recipient: remaining.Email,
					Error:     "Envio cancelado",
				})
				result.FailureCount++
			}
			break
		}

		single := &domain.SendEmailRequest{
			To:        recipient.Email,
			Subject:   req.Subject,
			Template:  req.Template,
			Variables: mergeVariables(req.Variables, recipient.TemplateVariables()),
		}

		messageID, sendErr := s.emailService.deliver(ctx, single, domain.SendSourceBulk)
		if sendErr != nil {
			result.Results = append(result.Results, domain.DeliveryResult{
				Success:   false,
				Recipient: recipient.Email,
				Error:     sendErr.Message,
			})
			result.FailureCount++
			continue
		}

		result.Results = append(result.Results, domain.DeliveryResult{
			Success:   true,
			Recipient: recipient.Email,
			MessageID: messageID,
		})
		result.SuccessCount++
	}

	s.log.Info("Bulk send finished",
		"total", result.Total, "success", result.SuccessCount, "failure", result.FailureCount)

	return result, nil
}

// mergeVariables overlays per-recipient values on the request-level ones.
// Recipient data wins on conflict.
func mergeVariables(base map[string]any, recipient map[string]string) map[string]any {
	merged := make(map[string]any, len(base)+len(recipient))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range recipient {
		merged[k] = v
	}
	return merged
}
