package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type DeliverFunc func(ctx context.Context, msg Message) error

type DispatcherConfig struct {
	MaxWorkers   int
	JobQueueSize int
	Timeout      time.Duration
}

type worker struct {
	id         int
	workerPool chan chan Message
	jobChannel chan Message
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan Message, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan Message),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, process func(Message)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.workerPool <- w.jobChannel:
			case <-ctx.Done():
				return
			}

			select {
			case msg := <-w.jobChannel:
				w.logger.Debug("worker delivering notification", "worker_id", w.id, "subject", msg.Subject)
				process(msg)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// Dispatcher delivers notifications on a fixed pool of workers fed by a
// bounded queue. Enqueue never blocks.
type Dispatcher struct {
	deliver DeliverFunc
	timeout time.Duration
	logger  *slog.Logger

	jobQueue   chan Message
	workerPool chan chan Message
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	stopOnce   sync.Once
}

func NewDispatcher(cfg DispatcherConfig, deliver DeliverFunc, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := cfg.JobQueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d := &Dispatcher{
		deliver:    deliver,
		timeout:    timeout,
		logger:     logger,
		jobQueue:   make(chan Message, queueSize),
		workerPool: make(chan chan Message, maxWorkers),
		maxWorkers: maxWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
	d.start()
	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			newWorker(i, d.workerPool, d.logger).start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification dispatcher started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- msg:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("notification dispatcher shutting down")
			return
		}
	}
}

// Enqueue reports false when the queue is full and the message was dropped.
func (d *Dispatcher) Enqueue(msg Message) bool {
	select {
	case <-d.ctx.Done():
		d.logger.Warn("notification dispatcher stopped, dropping notification", "subject", msg.Subject)
		return false
	default:
	}

	select {
	case d.jobQueue <- msg:
		return true
	default:
		d.logger.Warn("notification queue full, dropping notification",
			"subject", msg.Subject,
			"queue_capacity", cap(d.jobQueue))
		return false
	}
}

func (d *Dispatcher) process(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.deliver(ctx, msg); err != nil {
		d.logger.Error("notification delivery failed", "subject", msg.Subject, "error", err)
	}
}

// Shutdown stops the workers. Messages still queued are discarded.
func (d *Dispatcher) Shutdown() {
	d.stopOnce.Do(func() {
		d.logger.Info("shutting down notification dispatcher", "pending", len(d.jobQueue))
		d.cancel()
		d.wg.Wait()
		d.logger.Info("notification dispatcher shutdown complete")
	})
}
