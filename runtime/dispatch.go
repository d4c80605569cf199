package runtime

import (
	"sync"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/logging"
)

type notification struct {
	msg *core.Message
	err error
}

// dispatcher delivers observer notifications in order from its own
// goroutine. Producers wait at most timeout for room in a full queue.
type dispatcher struct {
	observer core.Observer
	queue    chan notification
	timeout  time.Duration
	logger   logging.Logger
	done     chan struct{}
	once     sync.Once
}

func newDispatcher(observer core.Observer, size int, timeout time.Duration, logger logging.Logger) *dispatcher {
	return &dispatcher{
		observer: observer,
		queue:    make(chan notification, size),
		timeout:  timeout,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// start runs the delivery goroutine. It is not joined by StopWhenIdle: a
// session waits for it only through drain.
func (d *dispatcher) start() {
	go func() {
		defer close(d.done)
		for n := range d.queue {
			d.deliver(n)
		}
	}()
}

func (d *dispatcher) deliver(n notification) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("Observer panicked", "panic", p)
		}
	}()

	if n.msg != nil {
		d.observer.OnMessage(*n.msg)
		return
	}
	d.observer.OnError(n.err)
}

func (d *dispatcher) message(m core.Message) {
	if d.observer == nil {
		return
	}
	d.enqueue(notification{msg: &m})
}

func (d *dispatcher) error(err error) {
	if d.observer == nil {
		return
	}
	d.enqueue(notification{err: err})
}

// enqueue must not be called after close.
func (d *dispatcher) enqueue(n notification) {
	select {
	case d.queue <- n:
		return
	default:
	}

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case d.queue <- n:
	case <-timer.C:
		d.logger.Warn("Observer queue full, notification dropped", "timeout", d.timeout, "is_error", n.err != nil)
	}
}

func (d *dispatcher) close() {
	d.once.Do(func() { close(d.queue) })
}

// drain waits at most timeout for every queued notification to be delivered
// and reports whether the queue drained. On false the goroutine keeps
// delivering in the background.
func (d *dispatcher) drain(timeout time.Duration) bool {
	select {
	case <-d.done:
		return true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.done:
		return true
	case <-timer.C:
		return false
	}
}
