package quota

import (
	"strings"
	"testing"

	"github.com/proteq/go-email-service/internal/shared/errors"
	"github.com/proteq/go-email-service/internal/shared/logger"
)

func newTestTracker(maxHourly, maxDaily int) *Tracker {
	return NewTracker(maxHourly, maxDaily, logger.NewNopLogger())
}

func TestAllowWithinLimits(t *testing.T) {
	tracker := newTestTracker(50, 200)

	if err := tracker.Allow(50); err != nil {
		t.Fatalf("Allow(50) on empty tracker: %v", err)
	}
}

func TestAllowHourlyExceeded(t *testing.T) {
	tracker := newTestTracker(50, 200)
	tracker.Record(45)

	err := tracker.Allow(10)
	if err == nil {
		t.Fatal("expected hourly limit error")
	}
	if err.Code != errors.CodeRateLimited {
		t.Errorf("code = %s, want %s", err.Code, errors.CodeRateLimited)
	}
	if !strings.Contains(err.Message, "por hora") {
		t.Errorf("message = %q, want hourly limit message", err.Message)
	}
	if !strings.Contains(err.Message, "50") {
		t.Errorf("message = %q, want max embedded", err.Message)
	}
}

func TestAllowDailyExceeded(t *testing.T) {
	tracker := newTestTracker(1000, 200)
	tracker.Record(180)

	err := tracker.Allow(30)
	if err == nil {
		t.Fatal("expected daily limit error")
	}
	if !strings.Contains(err.Message, "por dia") {
		t.Errorf("message = %q, want daily limit message", err.Message)
	}
}

func TestAllowExactBoundary(t *testing.T) {
	tracker := newTestTracker(50, 200)
	tracker.Record(40)

	if err := tracker.Allow(10); err != nil {
		t.Errorf("Allow(10) at 40/50: %v", err)
	}
	if err := tracker.Allow(11); err == nil {
		t.Error("Allow(11) at 40/50 should fail")
	}
}

func TestRecordIgnoresNonPositive(t *testing.T) {
	tracker := newTestTracker(50, 200)
	tracker.Record(0)
	tracker.Record(-5)

	usage := tracker.Snapshot()
	if usage.HourlySent != 0 {
		t.Errorf("HourlySent = %d, want 0", usage.HourlySent)
	}
}

func TestSnapshot(t *testing.T) {
	tracker := newTestTracker(50, 200)
	tracker.Record(12)

	usage := tracker.Snapshot()
	if usage.HourlySent != 12 || usage.HourlyRemaining != 38 {
		t.Errorf("hourly = %d/%d remaining, want 12/38", usage.HourlySent, usage.HourlyRemaining)
	}
	if usage.DailySent != 12 || usage.DailyRemaining != 188 {
		t.Errorf("daily = %d/%d remaining, want 12/188", usage.DailySent, usage.DailyRemaining)
	}
}

func TestResetCounters(t *testing.T) {
	tracker := newTestTracker(50, 200)
	tracker.Record(30)

	tracker.resetHourly()
	usage := tracker.Snapshot()
	if usage.HourlySent != 0 {
		t.Errorf("HourlySent after hourly reset = %d, want 0", usage.HourlySent)
	}
	if usage.DailySent != 30 {
		t.Errorf("DailySent after hourly reset = %d, want 30", usage.DailySent)
	}

	tracker.resetDaily()
	if got := tracker.Snapshot().DailySent; got != 0 {
		t.Errorf("DailySent after daily reset = %d, want 0", got)
	}
}
