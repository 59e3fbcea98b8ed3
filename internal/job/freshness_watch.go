package job

import (
	"context"
	"log"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const freshnessTick = 6 * time.Hour

// StaleAlerter receives dataset staleness notifications.
type StaleAlerter interface {
	BroadcastStaleCatalog(ageDays int) error
}

// FreshnessWatch alerts subscribers once when the newest catalog row
// crosses into the stale band, and re-arms after a fresh reload.
type FreshnessWatch struct {
	tracer  trace.Tracer
	handle  *catalog.Handle
	alerter StaleAlerter

	alerted bool
}

func NewFreshnessWatch(tracer trace.Tracer, handle *catalog.Handle, alerter StaleAlerter) *FreshnessWatch {
	return &FreshnessWatch{
		tracer:  tracer,
		handle:  handle,
		alerter: alerter,
	}
}

// Start checks dataset freshness on a slow tick. Blocks until ctx is
// cancelled.
func (w *FreshnessWatch) Start(ctx context.Context) {
	if w == nil || w.handle == nil || w.alerter == nil {
		log.Println("Freshness watch disabled: no alert sink")
		<-ctx.Done()
		return
	}

	log.Println("Freshness watch starting...")
	w.checkOnce(ctx)

	ticker := time.NewTicker(freshnessTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Freshness watch stopped")
			return
		case <-ticker.C:
			w.checkOnce(ctx)
		}
	}
}

func (w *FreshnessWatch) checkOnce(ctx context.Context) {
	if w.tracer != nil {
		_, span := w.tracer.Start(ctx, "freshness-job.check")
		defer span.End()
	}

	snap := w.handle.Snapshot()
	if snap == nil || snap.Len() == 0 {
		return
	}

	newest := snap.NewestUpdate()
	if newest.IsZero() {
		return
	}
	ageDays := int(time.Since(newest).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}

	if domain.ClassifyFreshness(ageDays) != domain.FreshnessStale {
		w.alerted = false
		return
	}
	if w.alerted {
		return
	}

	w.alerted = true
	log.Printf("catalog data is %d days old, alerting subscribers", ageDays)
	if err := w.alerter.BroadcastStaleCatalog(ageDays); err != nil {
		log.Printf("stale catalog broadcast error: %v", err)
	}
}
