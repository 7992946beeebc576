package service

import (
	"context"
	"detectionview/internal/logger"
	"detectionview/internal/model"
	"detectionview/internal/service/render"
	"sync/atomic"
)

// State is the view's fetch state.
type State int32

const (
	StateIdle State = iota
	StateFetching
)

func (s State) String() string {
	if s == StateFetching {
		return "fetching"
	}
	return "idle"
}

// DetectionFetcher retrieves the current detection list.
type DetectionFetcher interface {
	FetchDetections(ctx context.Context) ([]model.Detection, error)
}

// Broadcaster receives the rendered container fragment after each render.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Manager serializes refresh triggers (page load, push events, polling) into
// fetch-and-render cycles on a single consumer.
type Manager struct {
	fetcher     DetectionFetcher
	renderer    *render.Renderer
	broadcaster Broadcaster
	logger      *logger.Logger

	refreshQueue chan struct{}
	state        atomic.Int32
	cycles       atomic.Int64
}

// NewManager wires the view. broadcaster may be nil.
func NewManager(fetcher DetectionFetcher, renderer *render.Renderer, broadcaster Broadcaster, queueSize int, logger *logger.Logger) *Manager {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Manager{
		fetcher:      fetcher,
		renderer:     renderer,
		broadcaster:  broadcaster,
		logger:       logger,
		refreshQueue: make(chan struct{}, queueSize),
	}
}

// Refresh enqueues exactly one fetch-and-render cycle. It waits for room in
// the queue rather than dropping or merging the trigger.
func (m *Manager) Refresh(ctx context.Context) error {
	select {
	case m.refreshQueue <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes refresh triggers until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	m.logger.Info("View manager started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("View manager stopped")
			return
		case <-m.refreshQueue:
			m.refresh(ctx)
		}
	}
}

// refresh is one fetch-and-render cycle. Failures leave the container as it was.
func (m *Manager) refresh(ctx context.Context) {
	m.state.Store(int32(StateFetching))
	defer func() {
		m.state.Store(int32(StateIdle))
		m.cycles.Add(1)
	}()

	detections, err := m.fetcher.FetchDetections(ctx)
	if err != nil {
		m.logger.Error("Failed to fetch detections: %v", err)
		return
	}

	if err := m.renderer.RenderDetections(detections); err != nil {
		m.logger.Error("Failed to render detections: %v", err)
		return
	}
	m.logger.Info("Rendered %d detection(s)", len(detections))

	if m.broadcaster != nil {
		m.broadcaster.Broadcast([]byte(m.renderer.Container().InnerHTML()))
	}
}

func (m *Manager) State() State {
	return State(m.state.Load())
}

// Cycles reports completed fetch-and-render cycles, failed ones included.
func (m *Manager) Cycles() int64 {
	return m.cycles.Load()
}

// Pending reports triggers waiting in the queue.
func (m *Manager) Pending() int {
	return len(m.refreshQueue)
}

func (m *Manager) Container() *render.Container {
	return m.renderer.Container()
}
