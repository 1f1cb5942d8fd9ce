package worker

import (
	"context"

	"filesmanager/backend/internal/logger"
	"filesmanager/backend/internal/queue"

	"golang.org/x/sync/errgroup"
)

// Consumer is the part of the queue the pool drives.
type Consumer interface {
	Recover(ctx context.Context, name string) (int, error)
	Consume(ctx context.Context, name string, h queue.Handler) error
}

// Pool runs a fixed number of consumers per queue.
type Pool struct {
	consumer    Consumer
	concurrency int
	handlers    map[string]queue.Handler
}

func NewPool(consumer Consumer, concurrency int) *Pool {
	return &Pool{
		consumer:    consumer,
		concurrency: max(concurrency, 1),
		handlers:    make(map[string]queue.Handler),
	}
}

// Register routes jobs from name to h.
func (p *Pool) Register(name string, h queue.Handler) {
	p.handlers[name] = h
}

// Run requeues jobs stranded by a previous crash, then consumes every
// registered queue until ctx is done. Only one worker process should run Run
// against the same Redis; see RedisQueue.Recover.
func (p *Pool) Run(ctx context.Context) error {
	for name := range p.handlers {
		n, err := p.consumer.Recover(ctx, name)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("requeued stranded jobs", "queue", name, "count", n)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for name, h := range p.handlers {
		for i := 0; i < p.concurrency; i++ {
			g.Go(func() error {
				return p.consumer.Consume(ctx, name, h)
			})
		}
		logger.Info("worker started", "queue", name, "concurrency", p.concurrency)
	}
	return g.Wait()
}
