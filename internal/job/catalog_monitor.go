package job

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"

	"go.opentelemetry.io/otel/trace"
)

const defaultCatalogPoll = time.Minute

// CatalogMonitor watches the fund CSV on disk and hot-swaps the shared
// snapshot when the file changes. A failed reload keeps the previous
// snapshot serving.
type CatalogMonitor struct {
	tracer   trace.Tracer
	handle   *catalog.Handle
	path     string
	interval time.Duration

	lastMod time.Time
}

func NewCatalogMonitor(tracer trace.Tracer, handle *catalog.Handle, path string, interval time.Duration) *CatalogMonitor {
	if interval <= 0 {
		interval = defaultCatalogPoll
	}
	return &CatalogMonitor{
		tracer:   tracer,
		handle:   handle,
		path:     path,
		interval: interval,
	}
}

// Start polls for file changes. Blocks until ctx is cancelled.
func (m *CatalogMonitor) Start(ctx context.Context) {
	if m == nil || m.handle == nil || m.path == "" {
		log.Println("Catalog monitor disabled: no catalog configured")
		<-ctx.Done()
		return
	}

	log.Println("Catalog monitor starting...")
	if fi, err := os.Stat(m.path); err == nil {
		m.lastMod = fi.ModTime()
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Catalog monitor stopped")
			return
		case <-ticker.C:
			m.checkOnce(ctx)
		}
	}
}

func (m *CatalogMonitor) checkOnce(ctx context.Context) {
	if m.tracer != nil {
		_, span := m.tracer.Start(ctx, "catalog-job.reload-check")
		defer span.End()
	}

	fi, err := os.Stat(m.path)
	if err != nil {
		log.Printf("catalog monitor: stat %s: %v", m.path, err)
		return
	}
	if !fi.ModTime().After(m.lastMod) {
		return
	}

	c, err := catalog.Load(m.path)
	if err != nil {
		log.Printf("catalog monitor: reload failed, keeping previous snapshot: %v", err)
		return
	}

	m.lastMod = fi.ModTime()
	m.handle.Swap(c)
	log.Printf("catalog reloaded: %d funds (%d rows skipped)", c.Len(), c.SkippedRows())
}
