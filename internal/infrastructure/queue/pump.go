package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/api/metrics"
	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

const channelBuffer = 64

// Pump delivers identity snapshots to a single worker, one at a time and in
// emission order. A snapshot is fully handled before the next is dequeued.
type Pump struct {
	ch      chan domain.Session
	handler ports.SessionHandler
	log     zerolog.Logger

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
}

// NewPump creates a Pump feeding handler.
func NewPump(handler ports.SessionHandler, log zerolog.Logger) *Pump {
	return &Pump{
		ch:      make(chan domain.Session, channelBuffer),
		handler: handler,
		log:     log,
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the worker. It exits when ctx is cancelled or Stop is called.
func (p *Pump) Start(ctx context.Context) {
	go p.run(ctx)
}

// Enqueue hands a snapshot to the worker. It blocks only while the buffer is
// full and returns immediately once the pump is stopped.
func (p *Pump) Enqueue(s domain.Session) {
	select {
	case <-p.stopped:
		return
	default:
	}
	select {
	case p.ch <- s:
		metrics.SessionQueueDepth.Set(float64(len(p.ch)))
	case <-p.stopped:
	}
}

// Stop halts delivery and waits for the in-flight snapshot, if any.
func (p *Pump) Stop() {
	p.stopOnce.Do(func() { close(p.stopped) })
	<-p.done
}

func (p *Pump) run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopped:
			return
		case s := <-p.ch:
			metrics.SessionQueueDepth.Set(float64(len(p.ch)))
			d := p.handler.Handle(ctx, s)
			p.log.Debug().
				Str("state", d.State.String()).
				Str("redirect", d.Redirect).
				Msg("snapshot handled")
		}
	}
}

// Mount subscribes the handler to src through a fresh pump and returns the
// disposer. The disposer unsubscribes before stopping the pump, so no
// snapshot reaches the handler after it returns.
func Mount(ctx context.Context, src ports.IdentitySource, handler ports.SessionHandler, log zerolog.Logger) func() {
	p := NewPump(handler, log)
	p.Start(ctx)
	unsubscribe := src.Subscribe(p.Enqueue)
	return func() {
		unsubscribe()
		p.Stop()
	}
}
