package feeds

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/emberwatch/wildfire-engine/internal/config"
	"github.com/emberwatch/wildfire-engine/internal/models"
	"github.com/emberwatch/wildfire-engine/internal/repository"
	"github.com/emberwatch/wildfire-engine/internal/stream"
	"github.com/emberwatch/wildfire-engine/internal/worker"
)

// Manager polls the active-fire feed and fans new detections through a
// worker pool into the repository and the event stream. Detections
// only seed simulation origins; the engines never see the feed.
type Manager struct {
	cfg         *config.Config
	repo        repository.DetectionRepository
	broadcaster *stream.Broadcaster
	pool        *worker.Pool[*models.FireDetection]
	wg          sync.WaitGroup
}

func NewManager(cfg *config.Config, repo repository.DetectionRepository, broadcaster *stream.Broadcaster) *Manager {
	return &Manager{
		cfg:         cfg,
		repo:        repo,
		broadcaster: broadcaster,
	}
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, d *models.FireDetection) error {
		exists, err := m.repo.DetectionExists(ctx, d.ID)
		if err != nil {
			slog.Error("error checking existence", "id", d.ID, "error", err)
			return err
		}
		if exists {
			return nil
		}

		if err := m.repo.AddDetection(ctx, d); err != nil {
			slog.Error("error adding detection", "id", d.ID, "error", err)
			return err
		}

		if m.broadcaster != nil && shouldBroadcast(d) {
			m.broadcaster.Broadcast(stream.Event{
				Type:      stream.EventFireDetection,
				Timestamp: time.Now(),
				Payload:   d,
			})
		}

		slog.Info("added detection", "id", d.ID, "confidence", d.Confidence, "frp", d.FRP)
		return nil
	}

	m.pool = worker.NewPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	if m.cfg.Feeds.FIRMSEnabled {
		m.wg.Add(1)
		go m.runPoller(ctx, m.cfg.Feeds.FIRMSURL, m.cfg.Feeds.FIRMSPollInterval)
	}
}

func (m *Manager) runPoller(ctx context.Context, url string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", "firms", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, url)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", "firms")
			return
		case <-ticker.C:
			m.poll(ctx, url)
		}
	}
}

func (m *Manager) poll(ctx context.Context, url string) {
	slog.Debug("polling", "source", "firms")

	detections, err := m.pollFIRMS(ctx, url)
	if err != nil {
		slog.Error("poll failed", "source", "firms", "error", err)
		return
	}

	for _, d := range detections {
		m.pool.Submit(d)
	}

	slog.Debug("poll complete", "source", "firms", "count", len(detections))
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("feeds manager stopped")
}

// shouldBroadcast returns true if a detection meets streaming criteria:
// high sensor confidence, or fire radiative power >= 20 MW.
func shouldBroadcast(d *models.FireDetection) bool {
	return d.Confidence == "high" || d.FRP >= 20
}
