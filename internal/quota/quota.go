package quota

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/proteq/go-email-service/internal/metrics"
	"github.com/proteq/go-email-service/internal/shared/errors"
	"github.com/proteq/go-email-service/internal/shared/logger"
)

// Usage is a point-in-time view of the send ceilings, exposed by the
// statistics endpoint.
type Usage struct {
	HourlySent      int `json:"hourlySent"`
	HourlyLimit     int `json:"hourlyLimit"`
	HourlyRemaining int `json:"hourlyRemaining"`
	DailySent       int `json:"dailySent"`
	DailyLimit      int `json:"dailyLimit"`
	DailyRemaining  int `json:"dailyRemaining"`
}

// Tracker enforces the hourly and daily delivery ceilings. Counters reset
// on wall-clock boundaries (top of the hour, midnight) rather than on a
// sliding window.
type Tracker struct {
	mu         sync.Mutex
	hourlySent int
	dailySent  int
	maxHourly  int
	maxDaily   int
	cron       *cron.Cron
	logger     *logger.Logger
}

func NewTracker(maxHourly, maxDaily int, log *logger.Logger) *Tracker {
	return &Tracker{
		maxHourly: maxHourly,
		maxDaily:  maxDaily,
		cron:      cron.New(),
		logger:    log,
	}
}

// Start registers the reset jobs and starts the scheduler
func (t *Tracker) Start() error {
	if _, err := t.cron.AddFunc("0 * * * *", t.resetHourly); err != nil {
		return fmt.Errorf("registering hourly reset: %w", err)
	}
	if _, err := t.cron.AddFunc("0 0 * * *", t.resetDaily); err != nil {
		return fmt.Errorf("registering daily reset: %w", err)
	}
	t.cron.Start()
	t.logger.Info("Quota tracker started", "maxHourly", t.maxHourly, "maxDaily", t.maxDaily)
	return nil
}

// Stop halts the reset scheduler
func (t *Tracker) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

// Allow reports whether n more deliveries fit inside both ceilings. The
// check happens before delivery starts so a bulk batch is accepted or
// rejected as a whole.
func (t *Tracker) Allow(n int) *errors.AppError {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hourlySent+n > t.maxHourly {
		metrics.QuotaRejected.WithLabelValues("hourly").Inc()
		return errors.NewRateLimitError(
			fmt.Sprintf("Limite de emails por hora excedido. Máximo: %d emails por hora.", t.maxHourly))
	}
	if t.dailySent+n > t.maxDaily {
		metrics.QuotaRejected.WithLabelValues("daily").Inc()
		return errors.NewRateLimitError(
			fmt.Sprintf("Limite de emails por dia excedido. Máximo: %d emails por dia.", t.maxDaily))
	}
	return nil
}

// Record adds n successful deliveries to both windows
func (t *Tracker) Record(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	t.hourlySent += n
	t.dailySent += n
	t.mu.Unlock()
}

// Snapshot returns current usage against both ceilings
func (t *Tracker) Snapshot() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Usage{
		HourlySent:      t.hourlySent,
		HourlyLimit:     t.maxHourly,
		HourlyRemaining: max(0, t.maxHourly-t.hourlySent),
		DailySent:       t.dailySent,
		DailyLimit:      t.maxDaily,
		DailyRemaining:  max(0, t.maxDaily-t.dailySent),
	}
}

func (t *Tracker) resetHourly() {
	t.mu.Lock()
	sent := t.hourlySent
	t.hourlySent = 0
	t.mu.Unlock()
	t.logger.Info("Hourly email quota reset", "sentLastHour", sent)
}

func (t *Tracker) resetDaily() {
	t.mu.Lock()
	sent := t.dailySent
	t.dailySent = 0
	t.mu.Unlock()
	t.logger.Info("Daily email quota reset", "sentLastDay", sent)
}
