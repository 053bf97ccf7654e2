package feed

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/observable/pkg/entry"
	"github.com/vango-dev/observable/pkg/observable"
)

// ErrStopped is returned by Do once the hub is no longer running.
var ErrStopped = stderrors.New("feed: hub stopped")

// Entries is the collection type served by the feed.
type Entries = observable.Collection[*entry.Entry]

// HubConfig configures a Hub.
type HubConfig struct {
	// SendBuffer is the number of encoded messages queued per client.
	// A client whose queue is full is dropped.
	SendBuffer int

	// Registerer receives the hub's client metrics. Nil disables them.
	Registerer prometheus.Registerer

	Logger *slog.Logger
}

// Hub owns a collection and serializes every access to it on a single
// goroutine. Structural and item changes are encoded once and fanned out to
// all connected clients.
type Hub struct {
	entries *Entries
	ops     chan func()
	done    chan struct{}
	clients map[*client]struct{}

	sendBuffer int
	logger     *slog.Logger

	connected prometheus.Gauge
	dropped   prometheus.Counter
}

// NewHub returns a hub serving entries. The collection must not be touched
// by any other goroutine once Run has been called.
func NewHub(entries *Entries, cfg HubConfig) *Hub {
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	h := &Hub{
		entries:    entries,
		ops:        make(chan func()),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		sendBuffer: cfg.SendBuffer,
		logger:     cfg.Logger.With("component", "feed", "collection", entries.ID()),
	}

	if cfg.Registerer != nil {
		factory := promauto.With(cfg.Registerer)
		h.connected = factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "observable",
			Subsystem: "feed",
			Name:      "clients",
			Help:      "Number of connected event stream clients",
		})
		h.dropped = factory.NewCounter(prometheus.CounterOpts{
			Namespace: "observable",
			Subsystem: "feed",
			Name:      "dropped_clients_total",
			Help:      "Total number of clients dropped for not keeping up",
		})
	}

	return h
}

// Run processes submitted operations until ctx is done. On return every
// client stream is closed and further calls to Do fail with ErrStopped.
// Run must be called exactly once.
func (h *Hub) Run(ctx context.Context) {
	hc := h.entries.SubscribeCollectionChanged(func(e observable.CollectionChanged[*entry.Entry]) {
		h.broadcast(collectionChangedMessage(e))
	})
	hp := h.entries.SubscribeItemPropertyChanged(func(e observable.ItemPropertyChanged[*entry.Entry]) {
		h.broadcast(itemPropertyChangedMessage(e))
	})

	h.logger.Info("hub started", "items", h.entries.Len())

	defer func() {
		h.entries.Unsubscribe(hc)
		h.entries.Unsubscribe(hp)
		for c := range h.clients {
			h.drop(c)
		}
		close(h.done)
		h.logger.Info("hub stopped")
	}()

	for {
		select {
		case fn := <-h.ops:
			h.execute(fn)
		case <-ctx.Done():
			return
		}
	}
}

// execute runs fn, recovering from panics so one bad operation does not
// take the hub down.
func (h *Hub) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("operation panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Do runs fn on the hub goroutine and returns its error. It fails with
// ErrStopped if the hub is not running, or with ctx.Err() if ctx ends
// first; in the latter case fn may still run.
func (h *Hub) Do(ctx context.Context, fn func(entries *Entries) error) error {
	result := make(chan error, 1)
	op := func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("feed: operation panic: %v", r)
				panic(r)
			}
		}()
		result <- fn(h.entries)
	}

	select {
	case h.ops <- op:
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Clients returns the number of connected clients.
func (h *Hub) Clients(ctx context.Context) (int, error) {
	var n int
	err := h.Do(ctx, func(*Entries) error {
		n = len(h.clients)
		return nil
	})
	return n, err
}

// attach registers c and queues the current snapshot as its first message.
func (h *Hub) attach(ctx context.Context, c *client) error {
	return h.Do(ctx, func(entries *Entries) error {
		data, err := Encode(snapshotMessage(entries))
		if err != nil {
			return err
		}
		c.send <- data

		h.clients[c] = struct{}{}
		if h.connected != nil {
			h.connected.Inc()
		}
		h.logger.Debug("client attached", "client", c.id, "clients", len(h.clients))
		return nil
	})
}

// detach unregisters c. It is a no-op if c was already dropped.
func (h *Hub) detach(c *client) {
	err := h.Do(context.Background(), func(*Entries) error {
		if _, ok := h.clients[c]; ok {
			h.drop(c)
			h.logger.Debug("client detached", "client", c.id, "clients", len(h.clients))
		}
		return nil
	})
	if err != nil && !stderrors.Is(err, ErrStopped) {
		h.logger.Warn("detach failed", "client", c.id, "error", err)
	}
}

// drop removes c and closes its queue, which ends its write pump.
func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	if h.connected != nil {
		h.connected.Dec()
	}
}

// broadcast encodes m and queues it for every client. Called from
// collection listeners, hence always on the hub goroutine.
func (h *Hub) broadcast(m Message) {
	if len(h.clients) == 0 {
		return
	}

	data, err := Encode(m)
	if err != nil {
		h.logger.Error("encode failed", "type", m.Type, "error", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.drop(c)
			if h.dropped != nil {
				h.dropped.Inc()
			}
			h.logger.Warn("slow client dropped", "client", c.id, "buffer", cap(c.send))
		}
	}
}
