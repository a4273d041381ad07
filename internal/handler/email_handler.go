package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proteq/go-email-service/internal/domain"
	"github.com/proteq/go-email-service/internal/repository"
	"github.com/proteq/go-email-service/internal/service"
	"github.com/proteq/go-email-service/internal/shared/errors"
	"github.com/proteq/go-email-service/internal/shared/logger"
	"github.com/proteq/go-email-service/internal/template"
)

// StatsStore aggregates historical delivery counts for the statistics
// endpoint
type StatsStore interface {
	CountsSince(ctx context.Context, since time.Time) (repository.SendCounts, error)
}

// EmailHandler handles HTTP requests for the email surface
type EmailHandler struct {
	emailService *service.EmailService
	bulkService  *service.BulkEmailService
	stats        StatsStore
	smtpReady    bool
	log          *logger.Logger
}

// NewEmailHandler creates a new email handler. smtpReady reports whether
// SMTP credentials were configured at startup.
func NewEmailHandler(emailService *service.EmailService, bulkService *service.BulkEmailService, stats StatsStore, smtpReady bool, log *logger.Logger) *EmailHandler {
	return &EmailHandler{
		emailService: emailService,
		bulkService:  bulkService,
		stats:        stats,
		smtpReady:    smtpReady,
		log:          log,
	}
}

// RegisterRoutes mounts the email endpoints on the given group. The send
// limiters guard the two delivery endpoints individually.
func (h *EmailHandler) RegisterRoutes(group *gin.RouterGroup, singleLimit, bulkLimit gin.HandlerFunc) {
	group.GET("/health", h.Health)
	group.GET("/templates", h.Templates)
	group.POST("/preview", h.Preview)
	group.GET("/statistics", h.Statistics)
	group.POST("/send", singleLimit, h.Send)
	group.POST("/send-bulk", bulkLimit, h.SendBulk)
}

// Health reports service liveness and SMTP configuration state
func (h *EmailHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Sistema de email funcionando",
		"status":         "healthy",
		"service":        "email-service",
		"smtpConfigured": h.smtpReady,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Templates lists the available billing templates
func (h *EmailHandler) Templates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"templates": template.List(),
	})
}

// Preview renders a template with the supplied variables without sending
func (h *EmailHandler) Preview(c *gin.Context) {
	var req domain.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.NewValidationError("Requisição inválida", ""))
		return
	}

	html, appErr := h.emailService.Preview(&req)
	if appErr != nil {
		h.respondError(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"template": req.Template,
		"html":     html,
	})
}

// Statistics reports quota usage and historical delivery counts
func (h *EmailHandler) Statistics(c *gin.Context) {
	usage := h.emailService.Quota()

	stats := gin.H{
		"emailsSentThisHour": usage.HourlySent,
		"emailsSentToday":    usage.DailySent,
		"limitsPerHour":      usage.HourlyLimit,
		"limitsPerDay":       usage.DailyLimit,
		"remainingThisHour":  usage.HourlyRemaining,
		"remainingToday":     usage.DailyRemaining,
	}

	if h.stats != nil {
		counts, err := h.stats.CountsSince(c.Request.Context(), time.Time{})
		if err != nil {
			h.log.Warn("Failed to aggregate send counts", "error", err)
		} else {
			stats["totalSent"] = counts.Sent
			stats["totalFailed"] = counts.Failed
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"statistics": stats,
	})
}

// Send delivers one templated email
func (h *EmailHandler) Send(c *gin.Context) {
	var req domain.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.NewValidationError("Requisição inválida", ""))
		return
	}

	messageID, appErr := h.emailService.Send(c.Request.Context(), &req, domain.SendSourceSingle)
	if appErr != nil {
		h.respondError(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Email enviado com sucesso",
		"messageId": messageID,
	})
}

// SendBulk delivers one templated email to up to 50 recipients
func (h *EmailHandler) SendBulk(c *gin.Context) {
	var req domain.BulkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.NewValidationError("Requisição inválida", ""))
		return
	}

	result, appErr := h.bulkService.SendBulk(c.Request.Context(), &req)
	if appErr != nil {
		h.respondError(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "Envio em massa concluído",
		"total":             result.Total,
		"successCount":      result.SuccessCount,
		"failureCount":      result.FailureCount,
		"duplicatesRemoved": result.DuplicatesRemoved,
		"results":           result.Results,
	})
}

func (h *EmailHandler) respondError(c *gin.Context, appErr *errors.AppError) {
	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "path", c.FullPath(), "code", appErr.Code, "error", appErr)
	}

	body := gin.H{
		"success": false,
		"message": appErr.Message,
		"error":   appErr.Message,
		"code":    appErr.Code,
	}
	// Validation rejections carry a generic message with the detail in
	// the error field, as the product's callers expect
	if appErr.Code == errors.CodeValidation || appErr.Code == errors.CodeDisposableEmail {
		body["message"] = "Dados inválidos"
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}

	c.JSON(status, body)
}
