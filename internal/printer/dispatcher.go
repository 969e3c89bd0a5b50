// Package printer is the kitchen-ticket dispatch pipeline: a strictly
// serial FIFO queue in front of one simulated printer. Enqueue never blocks
// the caller; retries are scheduled with deferred timers, and the only
// operator controls are Retry and the implicit offline cooldown.
package printer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"barista/internal/bus"
	"barista/internal/domain"
)

type Config struct {
	BaseDelay       time.Duration
	AttemptDelay    time.Duration
	BackoffUnit     time.Duration
	OfflineCooldown time.Duration
	JobTimeout      time.Duration
	MaxRetries      int
}

func DefaultConfig() Config {
	return Config{
		BaseDelay:       2 * time.Second,
		AttemptDelay:    500 * time.Millisecond,
		BackoffUnit:     time.Second,
		OfflineCooldown: 5 * time.Second,
		JobTimeout:      30 * time.Second,
		MaxRetries:      3,
	}
}

// Dispatcher owns all print-job state for the process lifetime. It is an
// injected service instance, not ambient global state.
type Dispatcher struct {
	cfg    Config
	policy FaultPolicy
	pub    bus.Publisher
	logger *zap.Logger

	mu          sync.Mutex
	jobs        map[uint]*domain.PrintJob
	orders      map[uint]*domain.Order
	queue       []uint
	health      string
	lastSuccess *time.Time
	lastError   string
	timers      []*time.Timer

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func NewDispatcher(cfg Config, policy FaultPolicy, pub bus.Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:    cfg,
		policy: policy,
		pub:    pub,
		logger: logger,
		jobs:   make(map[uint]*domain.PrintJob),
		orders: make(map[uint]*domain.Order),
		health: domain.PrinterOnline,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Start launches the single worker. One job is printing at a time; the
// queue models one physical printer.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go d.run(ctx)
}

func (d *Dispatcher) Stop() {
	close(d.done)
	d.mu.Lock()
	for _, timer := range d.timers {
		timer.Stop()
	}
	d.timers = nil
	d.mu.Unlock()
	d.wg.Wait()
}

// Enqueue creates the order's job, or resets it if one exists: one job per
// order, re-queuing replaces rather than duplicates.
func (d *Dispatcher) Enqueue(order *domain.Order) {
	d.mu.Lock()
	job, ok := d.jobs[order.ID]
	if !ok {
		job = &domain.PrintJob{OrderID: order.ID}
		d.jobs[order.ID] = job
	}
	job.Status = domain.PrintStatusQueued
	job.Message = "queued for printing"
	job.Attempts = 0
	job.UpdatedAt = time.Now()
	d.orders[order.ID] = order
	d.push(order.ID)
	d.mu.Unlock()

	d.publishJob(order.ID)
	d.poke()
}

// Retry is the operator action after a terminal failure. It re-enqueues
// failed or offline jobs with a fresh attempt budget and is a no-op
// returning false for any other status.
func (d *Dispatcher) Retry(orderID uint) bool {
	d.mu.Lock()
	job, ok := d.jobs[orderID]
	if !ok || !job.Retryable() {
		d.mu.Unlock()
		return false
	}
	job.Status = domain.PrintStatusQueued
	job.Message = "retry requested"
	job.Attempts = 0
	job.UpdatedAt = time.Now()
	d.push(orderID)
	d.mu.Unlock()

	d.publishJob(orderID)
	d.poke()
	return true
}

func (d *Dispatcher) Job(orderID uint) (domain.PrintJob, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	job, ok := d.jobs[orderID]
	if !ok {
		return domain.PrintJob{}, false
	}
	return *job, true
}

// Health is the single source of truth behind the printer icon.
func (d *Dispatcher) Health() domain.PrinterHealth {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := domain.PrinterHealth{
		Status:     d.health,
		QueueDepth: len(d.queue),
		LastError:  d.lastError,
	}
	if d.lastSuccess != nil {
		at := *d.lastSuccess
		h.LastSuccess = &at
	}
	return h
}

// push appends the order to the queue unless it is already waiting.
func (d *Dispatcher) push(orderID uint) {
	for _, id := range d.queue {
		if id == orderID {
			return
		}
	}
	d.queue = append(d.queue, orderID)
}

func (d *Dispatcher) poke() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case <-d.wake:
		}

		for {
			orderID, ok := d.pop()
			if !ok {
				break
			}
			d.process(ctx, orderID)

			select {
			case <-d.done:
				return
			case <-ctx.Done():
				return
			default:
			}
		}
	}
}

func (d *Dispatcher) pop() (uint, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return 0, false
	}
	orderID := d.queue[0]
	d.queue = d.queue[1:]
	return orderID, true
}

func (d *Dispatcher) process(ctx context.Context, orderID uint) {
	d.mu.Lock()
	job, ok := d.jobs[orderID]
	if !ok {
		d.mu.Unlock()
		return
	}
	attempt := job.Attempts
	job.Status = domain.PrintStatusPrinting
	job.Message = "printing kitchen ticket"
	job.UpdatedAt = time.Now()
	d.mu.Unlock()

	d.publishJob(orderID)

	// Simulated hardware time, bounded so a stuck job cannot stall the
	// queue behind it.
	delay := d.cfg.BaseDelay + time.Duration(attempt)*d.cfg.AttemptDelay
	if !d.simulateWork(ctx, delay) {
		d.fail(orderID, attempt, "print timed out")
		return
	}

	if attempt == 0 && d.policy.ShouldGoOffline() {
		d.goOffline(orderID)
		return
	}

	if d.policy.ShouldFail(attempt) {
		d.fail(orderID, attempt, "transient print failure")
		return
	}

	d.succeed(orderID)
}

func (d *Dispatcher) simulateWork(ctx context.Context, delay time.Duration) bool {
	if delay > d.cfg.JobTimeout {
		delay = d.cfg.JobTimeout
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-d.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (d *Dispatcher) goOffline(orderID uint) {
	d.mu.Lock()
	job := d.jobs[orderID]
	job.Status = domain.PrintStatusOffline
	job.Message = "printer offline"
	job.UpdatedAt = time.Now()
	d.health = domain.PrinterOffline
	d.lastError = "printer offline"
	d.mu.Unlock()

	d.logger.Warn("printer offline", zap.Uint("orderId", orderID))
	d.publishJob(orderID)

	// After the cooldown the printer is reachable again and the job goes
	// back on the queue automatically.
	d.schedule(d.cfg.OfflineCooldown, func() {
		d.mu.Lock()
		job, ok := d.jobs[orderID]
		if !ok || job.Status != domain.PrintStatusOffline {
			d.mu.Unlock()
			return
		}
		d.health = domain.PrinterOnline
		job.Status = domain.PrintStatusQueued
		job.Message = "printer back online, re-queued"
		job.Attempts++
		job.UpdatedAt = time.Now()
		d.push(orderID)
		d.mu.Unlock()

		d.publishJob(orderID)
		d.poke()
	})
}

func (d *Dispatcher) fail(orderID uint, attempt int, reason string) {
	d.mu.Lock()
	job := d.jobs[orderID]
	job.Status = domain.PrintStatusFailed
	job.Message = reason
	job.UpdatedAt = time.Now()
	d.health = domain.PrinterDegraded
	d.lastError = reason
	exhausted := attempt >= d.cfg.MaxRetries
	d.mu.Unlock()

	d.logger.Warn("print attempt failed",
		zap.Uint("orderId", orderID), zap.Int("attempt", attempt), zap.String("reason", reason))
	d.publishJob(orderID)

	if exhausted {
		d.logger.Error("print job failed permanently", zap.Uint("orderId", orderID), zap.Int("attempts", attempt+1))
		return
	}

	backoff := d.cfg.BackoffUnit * (1 << attempt)
	d.schedule(backoff, func() {
		d.mu.Lock()
		job, ok := d.jobs[orderID]
		if !ok || job.Status != domain.PrintStatusFailed {
			d.mu.Unlock()
			return
		}
		job.Status = domain.PrintStatusQueued
		job.Message = "re-queued after failure"
		job.Attempts++
		job.UpdatedAt = time.Now()
		d.push(orderID)
		d.mu.Unlock()

		d.publishJob(orderID)
		d.poke()
	})
}

func (d *Dispatcher) succeed(orderID uint) {
	now := time.Now()
	d.mu.Lock()
	job := d.jobs[orderID]
	job.Status = domain.PrintStatusSuccess
	job.Message = "kitchen ticket printed"
	job.UpdatedAt = now
	d.health = domain.PrinterOnline
	d.lastSuccess = &now
	d.lastError = ""
	d.mu.Unlock()

	d.logger.Info("kitchen ticket printed", zap.Uint("orderId", orderID))
	d.publishJob(orderID)
}

func (d *Dispatcher) schedule(after time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.done:
		return
	default:
	}
	d.timers = append(d.timers, time.AfterFunc(after, fn))
}

// publishJob fans the job's current state out to the kitchen channel and
// the printer channel.
func (d *Dispatcher) publishJob(orderID uint) {
	d.mu.Lock()
	job, ok := d.jobs[orderID]
	if !ok {
		d.mu.Unlock()
		return
	}
	status := job.Status
	order := d.orders[orderID]

	h := domain.PrinterHealth{
		Status:     d.health,
		QueueDepth: len(d.queue),
		LastError:  d.lastError,
	}
	if d.lastSuccess != nil {
		at := *d.lastSuccess
		h.LastSuccess = &at
	}
	d.mu.Unlock()

	d.pub.Publish(bus.ChannelKitchen, bus.Event{
		Type:    bus.EventKOTUpdate,
		Payload: bus.KOTPayload{Order: order, PrintStatus: status},
	})
	d.pub.Publish(bus.ChannelPrinter, bus.Event{
		Type:    bus.EventPrinterUpdate,
		Payload: bus.PrinterPayload{OrderID: orderID, Status: status, Health: h},
	})
}
