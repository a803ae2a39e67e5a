package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher writes audit events on a fixed set of workers. Events for the
// same content id always land on the same worker, so a pin followed by an
// unpin is persisted in that order.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
	onDrop  func(domain.AuditEvent)
}

// NewDispatcher creates numWorkers shards; defaultWorkers is used when
// numWorkers <= 0.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// OnDrop registers a callback for events discarded because a shard is full.
func (d *Dispatcher) OnDrop(fn func(domain.AuditEvent)) {
	d.onDrop = fn
}

// Start launches the workers. They drain their queues and exit once ctx is
// cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record never blocks the request path. A full shard drops the event.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	select {
	case d.workers[d.shardIndex(event.ContentID)] <- event:
	default:
		d.log.Warn().
			Str("content_id", event.ContentID).
			Str("action", string(event.Action)).
			Msg("audit queue full, event dropped")
		if d.onDrop != nil {
			d.onDrop(event)
		}
	}
}

func (d *Dispatcher) shardIndex(contentID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(contentID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			d.write(ctx, id, event)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan domain.AuditEvent) {
	ctx := context.Background()
	for {
		select {
		case event := <-ch:
			d.write(ctx, id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, event domain.AuditEvent) {
	if err := d.repo.InsertEvent(ctx, &event); err != nil {
		d.log.Error().Err(err).
			Str("content_id", event.ContentID).
			Str("action", string(event.Action)).
			Int("worker_id", id).
			Msg("audit write failed")
	}
}
