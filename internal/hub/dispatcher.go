package hub

import (
	"context"
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"
	"marketplace_chat/pkg/logger"
)

var ErrDispatcherClosed = errors.New("dispatcher closed")

// Job is work that must run in a room's serial order.
type Job func(ctx context.Context) error

type task struct {
	ctx  context.Context
	job  Job
	done chan error
}

// Dispatcher serializes jobs per room. Rooms are hashed onto a fixed set of
// shards; each shard runs its queue on one goroutine, so two jobs for the
// same room never overlap and run in submission order.
type Dispatcher struct {
	shards []chan task
	log    logger.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(shards, queue int, log logger.Logger) *Dispatcher {
	if shards < 1 {
		shards = 1
	}
	if queue < 1 {
		queue = 1
	}

	d := &Dispatcher{
		shards: make([]chan task, shards),
		log:    log,
	}
	for i := range d.shards {
		ch := make(chan task, queue)
		d.shards[i] = ch
		d.wg.Add(1)
		go d.run(i, ch)
	}

	log.Info("Room dispatcher started", "shards", shards, "queue", queue)
	return d
}

func (d *Dispatcher) shardFor(roomID string) chan task {
	return d.shards[xxhash.Sum64String(roomID)%uint64(len(d.shards))]
}

func (d *Dispatcher) run(shard int, ch chan task) {
	defer d.wg.Done()

	for t := range ch {
		err := d.exec(t)
		if t.done != nil {
			t.done <- err
			continue
		}
		if err != nil {
			d.log.Warn("Room job failed", "error", err, "shard", shard)
		}
	}
}

func (d *Dispatcher) exec(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Room job panicked", "panic", r)
			err = errors.New("room job panicked")
		}
	}()
	return t.job(t.ctx)
}

// Submit queues job on roomID's shard without waiting for it to run. It
// blocks while the shard queue is full, until ctx is done.
func (d *Dispatcher) Submit(ctx context.Context, roomID string, job Job) error {
	return d.enqueue(ctx, roomID, task{ctx: context.WithoutCancel(ctx), job: job})
}

// Do queues job and waits for its result.
func (d *Dispatcher) Do(ctx context.Context, roomID string, job Job) error {
	done := make(chan error, 1)
	if err := d.enqueue(ctx, roomID, task{ctx: ctx, job: job, done: done}); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, roomID string, t task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.shardFor(roomID) <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs, runs everything already queued and waits for
// the shards to drain or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, ch := range d.shards {
		close(ch)
	}
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		d.log.Info("Room dispatcher drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
