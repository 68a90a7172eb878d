// Package processor runs the event bus. Domain processors register named
// listeners; a single worker goroutine delivers every dispatched event to
// all listeners in registration order, so listeners never run concurrently
// with each other. Audio capture data takes a separate parallel path.
package processor

import (
	"log/slog"
	"sync"
	"time"

	"go.qspeak.app/qspeak/event"
)

// Listener handles one event. Errors are logged and swallowed so a failing
// listener cannot stall the bus.
type Listener func(e event.Event) error

// AudioListener receives raw PCM samples from the capture pipeline.
type AudioListener func(samples []int16)

// slowListenerThreshold flags listeners that hold up event delivery.
const slowListenerThreshold = 50 * time.Millisecond

type namedListener struct {
	name string
	fn   Listener
}

// Processor is the application event bus.
type Processor struct {
	mu        sync.Mutex
	listeners []namedListener
	audio     []AudioListener

	events chan event.Event
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	log *slog.Logger
}

func New(log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		events: make(chan event.Event, 256),
		done:   make(chan struct{}),
		log:    log,
	}
}

// RegisterEventListener adds a listener under a diagnostic name. Listeners
// run in registration order.
func (p *Processor) RegisterEventListener(name string, fn Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, namedListener{name: name, fn: fn})
}

// RegisterAudioListener adds a PCM consumer.
func (p *Processor) RegisterAudioListener(fn AudioListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audio = append(p.audio, fn)
}

// Start launches the delivery worker.
func (p *Processor) Start() {
	p.wg.Add(1)
	go p.run()
}

func (p *Processor) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case e := <-p.events:
			p.deliver(e)
		}
	}
}

func (p *Processor) deliver(e event.Event) {
	p.mu.Lock()
	listeners := make([]namedListener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, l := range listeners {
		start := time.Now()
		if err := l.fn(e); err != nil {
			p.log.Error("event listener failed", "listener", l.name, "event", e.Name(), "error", err)
		}
		if elapsed := time.Since(start); elapsed > slowListenerThreshold {
			p.log.Warn("event listener is slow", "listener", l.name, "event", e.Name(), "elapsed", elapsed)
		}
	}
}

// Dispatch queues an event without blocking the caller. If the queue is
// full the event is dropped with a log entry, which only happens when a
// listener has wedged.
func (p *Processor) Dispatch(e event.Event) {
	select {
	case p.events <- e:
	case <-p.done:
	default:
		p.log.Error("event queue full, dropping event", "event", e.Name())
	}
}

// ProcessAudioData fans samples out to all audio listeners in parallel and
// waits for them to finish the chunk.
func (p *Processor) ProcessAudioData(samples []int16) {
	p.mu.Lock()
	audio := make([]AudioListener, len(p.audio))
	copy(audio, p.audio)
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, fn := range audio {
		wg.Add(1)
		go func(fn AudioListener) {
			defer wg.Done()
			fn(samples)
		}(fn)
	}
	wg.Wait()
}

// Close stops the worker. Queued events that were not yet delivered are
// discarded.
func (p *Processor) Close() {
	p.once.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}
