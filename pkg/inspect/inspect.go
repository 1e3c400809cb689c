package inspect

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/fluxion/pkg/fluxion"
)

// Stats is the aggregate counter snapshot served at /stats.
type Stats struct {
	Runtimes             int               `json:"runtimes"`
	Flushes              uint64            `json:"flushes"`
	UpdateRuns           uint64            `json:"update_runs"`
	EffectRuns           uint64            `json:"effect_runs"`
	TransitionsCommitted uint64            `json:"transitions_committed"`
	Computations         map[string]uint64 `json:"computations"`
	StreamClients        int               `json:"stream_clients"`
	StreamDropped        uint64            `json:"stream_dropped"`
}

// FlushRecord is one completed flush, kept in the recent ring and
// streamed to WebSocket clients.
type FlushRecord struct {
	Seq                 uint64    `json:"seq"`
	At                  time.Time `json:"at"`
	DurationMicros      int64     `json:"duration_us"`
	Passes              int       `json:"passes"`
	UpdateRuns          int       `json:"update_runs"`
	EffectRuns          int       `json:"effect_runs"`
	TransitionCommitted bool      `json:"transition_committed"`
}

// Options configures an Inspector.
type Options struct {
	// RingSize is how many recent flushes /flushes returns (default: 128).
	RingSize int

	// QueueSize is the depth of the stream queue between runtime hooks
	// and the WebSocket fanout. When the queue is full new events drop
	// from the stream only; counters and the ring stay exact
	// (default: 256).
	QueueSize int

	// Logger receives connection lifecycle logs (default: slog.Default()).
	Logger *slog.Logger
}

// Inspector aggregates hook events from one or more runtimes and serves
// them over HTTP. Hook callbacks do constant work; the WebSocket fanout
// runs on its own goroutine behind a lossy queue so a slow client never
// stalls a flush.
type Inspector struct {
	log *slog.Logger
	hub *hub

	mu           sync.Mutex
	runtimes     int
	flushes      uint64
	updateRuns   uint64
	effectRuns   uint64
	transitions  uint64
	computations map[string]uint64
	ring         *flushRing
	dropped      uint64

	events    chan FlushRecord
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an Inspector. Attach runtimes to it, mount Handler
// somewhere, and Close it when done.
func New(opts Options) *Inspector {
	if opts.RingSize <= 0 {
		opts.RingSize = 128
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ins := &Inspector{
		log:          opts.Logger,
		hub:          newHub(),
		computations: make(map[string]uint64),
		ring:         newFlushRing(opts.RingSize),
		events:       make(chan FlushRecord, opts.QueueSize),
		done:         make(chan struct{}),
	}
	go ins.fanout()
	return ins
}

// Attach subscribes the inspector to rt's hooks. Events from before
// Attach are not counted.
func (ins *Inspector) Attach(rt *fluxion.Runtime) {
	ins.mu.Lock()
	ins.runtimes++
	ins.mu.Unlock()

	rt.AddHooks(fluxion.Hooks{
		ComputationCreated: func(ev fluxion.ComputationEvent) {
			ins.mu.Lock()
			ins.computations[ev.Kind]++
			ins.mu.Unlock()
		},
		FlushCompleted: func(ev fluxion.FlushEvent) {
			rec := FlushRecord{
				Seq:                 ev.Seq,
				At:                  time.Now(),
				DurationMicros:      ev.Duration.Microseconds(),
				Passes:              ev.Passes,
				UpdateRuns:          ev.UpdateRuns,
				EffectRuns:          ev.EffectRuns,
				TransitionCommitted: ev.TransitionCommitted,
			}

			ins.mu.Lock()
			ins.flushes++
			ins.updateRuns += uint64(ev.UpdateRuns)
			ins.effectRuns += uint64(ev.EffectRuns)
			if ev.TransitionCommitted {
				ins.transitions++
			}
			ins.ring.push(rec)
			ins.mu.Unlock()

			select {
			case ins.events <- rec:
			default:
				ins.mu.Lock()
				ins.dropped++
				ins.mu.Unlock()
			}
		},
	})
}

// Stats returns the current aggregate snapshot.
func (ins *Inspector) Stats() Stats {
	ins.mu.Lock()
	defer ins.mu.Unlock()

	comps := make(map[string]uint64, len(ins.computations))
	for k, v := range ins.computations {
		comps[k] = v
	}
	return Stats{
		Runtimes:             ins.runtimes,
		Flushes:              ins.flushes,
		UpdateRuns:           ins.updateRuns,
		EffectRuns:           ins.effectRuns,
		TransitionsCommitted: ins.transitions,
		Computations:         comps,
		StreamClients:        ins.hub.count(),
		StreamDropped:        ins.dropped,
	}
}

// RecentFlushes returns the ring contents, oldest first.
func (ins *Inspector) RecentFlushes() []FlushRecord {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.ring.snapshot()
}

// Close stops the WebSocket fanout and disconnects all stream clients.
// The inspector keeps counting after Close; only the stream stops.
func (ins *Inspector) Close() {
	ins.closeOnce.Do(func() {
		close(ins.done)
		ins.hub.closeAll()
	})
}

// fanout drains the stream queue and broadcasts to WebSocket clients.
func (ins *Inspector) fanout() {
	for {
		select {
		case rec := <-ins.events:
			ins.hub.broadcastFlush(rec)
		case <-ins.done:
			return
		}
	}
}

// flushRing is a fixed-size ring of recent flush records.
type flushRing struct {
	buf  []FlushRecord
	next int
	full bool
}

func newFlushRing(size int) *flushRing {
	return &flushRing{buf: make([]FlushRecord, size)}
}

func (r *flushRing) push(rec FlushRecord) {
	r.buf[r.next] = rec
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

// snapshot returns the ring contents in insertion order.
func (r *flushRing) snapshot() []FlushRecord {
	if !r.full {
		out := make([]FlushRecord, r.next)
		copy(out, r.buf[:r.next])
		return out
	}
	out := make([]FlushRecord, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}
