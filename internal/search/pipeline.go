package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"namesearch/internal/domain"
	"namesearch/internal/eventbus"
	"namesearch/internal/metrics"
)

// Options configures a Pipeline. Zero values fall back to sensible defaults.
type Options struct {
	Debounce time.Duration // quiet period before a pass starts
	Latency  time.Duration // used to build the default SimulatedSearcher
	Grace    time.Duration // how long state survives with no observers

	Searcher Searcher          // defaults to SimulatedSearcher{Latency}
	Bus      eventbus.EventBus // defaults to a private bus owned by the pipeline
	Logger   *zap.Logger
	Metrics  *metrics.Pipeline
}

// snapshotEvents are the bus events observers receive
var snapshotEvents = []eventbus.EventType{
	eventbus.EventQueryChanged,
	eventbus.EventSearchStarted,
	eventbus.EventResultsPublished,
	eventbus.EventPipelineReset,
}

// Pipeline turns query edits into debounced, cancellable filter passes over
// a static catalog and publishes immutable snapshots of the outcome.
//
// Every SetQuery bumps a generation counter; a pass may only publish if its
// generation is still current, so superseded passes are silently dropped.
type Pipeline struct {
	mu sync.Mutex

	catalog  *domain.Catalog
	debounce time.Duration
	grace    time.Duration
	searcher Searcher
	bus      eventbus.EventBus
	ownsBus  bool
	logger   *zap.Logger
	metrics  *metrics.Pipeline

	snap          domain.SearchSnapshot
	debounceTimer *time.Timer
	cancelPass    context.CancelFunc
	graceTimer    *time.Timer
	graceEpoch    uint64
	observers     int
	active        bool
	closed        bool
}

// New creates a pipeline over catalog. The pipeline starts settled with a
// blank query (full catalog, not searching) and stays inactive until the
// first observer attaches.
func New(catalog *domain.Catalog, opts Options) *Pipeline {
	p := &Pipeline{
		catalog:  catalog,
		debounce: opts.Debounce,
		grace:    opts.Grace,
		searcher: opts.Searcher,
		bus:      opts.Bus,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.Named("pipeline")
	if p.searcher == nil {
		p.searcher = SimulatedSearcher{Latency: opts.Latency}
	}
	if p.bus == nil {
		p.bus = eventbus.New(p.logger)
		p.ownsBus = true
	}
	if p.metrics == nil {
		p.metrics = metrics.NewPipeline(nil)
	}
	p.snap = p.initialSnapshot(0)
	p.snap.Seq = 1
	return p
}

func (p *Pipeline) initialSnapshot(generation uint64) domain.SearchSnapshot {
	return domain.SearchSnapshot{
		Results:    p.catalog.All(),
		Generation: generation,
		Phase:      domain.PhaseIdle,
	}
}

// Snapshot returns the current state
func (p *Pipeline) Snapshot() domain.SearchSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Query returns the live query text
func (p *Pipeline) Query() string {
	return p.Snapshot().Query
}

// Results returns the last published result set
func (p *Pipeline) Results() []*domain.Person {
	return p.Snapshot().Results
}

// IsSearching reports whether a newer query than the settled one is pending
func (p *Pipeline) IsSearching() bool {
	return p.Snapshot().Searching
}

// IsEmpty reports whether the last settled non-blank query found nothing
func (p *Pipeline) IsEmpty() bool {
	return p.Snapshot().Empty
}

// Catalog returns the record set the pipeline filters
func (p *Pipeline) Catalog() *domain.Catalog {
	return p.catalog
}

// Bus returns the bus snapshots are published on
func (p *Pipeline) Bus() eventbus.EventBus {
	return p.bus
}

// SetQuery replaces the query. The new text is visible immediately; the
// filter pass runs once the debounce window passes without another edit.
func (p *Pipeline) SetQuery(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.stopWorkLocked()
	p.snap.Generation++
	p.snap.Query = text
	p.snap.Searching = true
	p.snap.Phase = domain.PhaseIdle
	if p.active {
		p.scheduleLocked()
	}
	p.metrics.QueriesTotal.Inc()

	p.logger.Debug("query changed",
		zap.String("query", text),
		zap.Uint64("generation", p.snap.Generation),
		zap.Bool("active", p.active),
	)
	p.publishLocked(func(s domain.SearchSnapshot) eventbus.DomainEvent {
		return domain.QueryChangedEvent{Snapshot: s}
	})
}

// scheduleLocked arms the debounce timer for the current generation
func (p *Pipeline) scheduleLocked() {
	gen := p.snap.Generation
	p.snap.Phase = domain.PhaseDebouncing
	p.debounceTimer = time.AfterFunc(p.debounce, func() {
		p.startPass(gen)
	})
}

// stopWorkLocked stops the debounce timer and cancels any running pass
func (p *Pipeline) stopWorkLocked() {
	if p.debounceTimer != nil {
		p.debounceTimer.Stop()
		p.debounceTimer = nil
	}
	if p.cancelPass != nil {
		p.cancelPass()
		p.cancelPass = nil
	}
}

func (p *Pipeline) startPass(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.active || gen != p.snap.Generation {
		return
	}

	p.debounceTimer = nil
	query := p.snap.Query
	p.snap.Phase = domain.PhaseFiltering
	p.publishLocked(func(s domain.SearchSnapshot) eventbus.DomainEvent {
		return domain.SearchStartedEvent{Snapshot: s}
	})

	if domain.IsBlank(query) {
		p.settleLocked(query, p.catalog.All(), 0)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelPass = cancel
	go p.runPass(ctx, gen, query)
}

func (p *Pipeline) runPass(ctx context.Context, gen uint64, query string) {
	start := time.Now()
	results, err := p.searcher.Search(ctx, query, p.catalog)
	p.finishPass(gen, query, results, err, time.Since(start))
}

func (p *Pipeline) finishPass(gen uint64, query string, results []*domain.Person, err error, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || gen != p.snap.Generation {
		p.metrics.PassesTotal.WithLabelValues(metrics.OutcomeSuperseded).Inc()
		p.logger.Debug("discarding stale pass",
			zap.String("query", query),
			zap.Uint64("generation", gen),
			zap.Uint64("current", p.snap.Generation),
		)
		if !p.closed {
			p.bus.Publish(domain.PassSupersededEvent{Query: query, Generation: gen})
		}
		return
	}

	if p.cancelPass != nil {
		p.cancelPass()
		p.cancelPass = nil
	}

	if err != nil {
		p.metrics.PassesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		p.logger.Error("filter pass failed", zap.String("query", query), zap.Error(err))
		p.snap.Searching = false
		p.snap.Err = err
		p.snap.Phase = domain.PhaseIdle
		p.publishLocked(func(s domain.SearchSnapshot) eventbus.DomainEvent {
			return domain.ResultsPublishedEvent{Snapshot: s}
		})
		return
	}

	p.settleLocked(query, results, elapsed)
}

// settleLocked publishes the outcome of the current generation's pass
func (p *Pipeline) settleLocked(query string, results []*domain.Person, elapsed time.Duration) {
	p.snap.SettledQuery = query
	p.snap.Results = results
	p.snap.Searching = false
	p.snap.Empty = len(results) == 0 && !domain.IsBlank(query)
	p.snap.Err = nil
	p.snap.Phase = domain.PhaseIdle

	p.metrics.PassesTotal.WithLabelValues(metrics.OutcomePublished).Inc()
	p.metrics.PassDuration.Observe(elapsed.Seconds())
	p.metrics.ResultsLast.Set(float64(len(results)))

	p.logger.Info("results published",
		zap.String("query", query),
		zap.Uint64("generation", p.snap.Generation),
		zap.Int("results", len(results)),
		zap.Bool("empty", p.snap.Empty),
		zap.Duration("duration", elapsed),
	)
	p.publishLocked(func(s domain.SearchSnapshot) eventbus.DomainEvent {
		return domain.ResultsPublishedEvent{Snapshot: s}
	})
}

// publishLocked stamps a new sequence number and queues the event.
// Publishing under the lock keeps bus order equal to state order.
func (p *Pipeline) publishLocked(event func(domain.SearchSnapshot) eventbus.DomainEvent) {
	p.snap.Seq++
	p.bus.Publish(event(p.snap))
}

// Observe attaches fn as an observer. fn receives the current snapshot right
// away and then every newer one, in order, on the bus goroutine. The returned
// function detaches the observer.
func (p *Pipeline) Observe(fn func(domain.SearchSnapshot)) func() {
	o := &observer{fn: fn}

	unsubs := make([]func(), 0, len(snapshotEvents))
	for _, t := range snapshotEvents {
		unsubs = append(unsubs, p.bus.Subscribe(t, o.onEvent))
	}

	attached := p.attach()
	o.deliver(p.Snapshot())

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, u := range unsubs {
				u()
			}
			if attached {
				p.detach()
			}
		})
	}
}

func (p *Pipeline) attach() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}

	p.observers++
	p.metrics.Observers.Set(float64(p.observers))
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
	p.graceEpoch++

	if !p.active {
		p.active = true
		p.logger.Debug("pipeline activated", zap.Bool("pending", p.snap.Searching))
		if p.snap.Searching {
			p.scheduleLocked()
		}
	}
	p.bus.Publish(domain.ObserversChangedEvent{Count: p.observers})
	return true
}

func (p *Pipeline) detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.observers--
	p.metrics.Observers.Set(float64(p.observers))
	p.bus.Publish(domain.ObserversChangedEvent{Count: p.observers})
	if p.observers > 0 {
		return
	}

	p.graceEpoch++
	epoch := p.graceEpoch
	p.graceTimer = time.AfterFunc(p.grace, func() {
		p.expire(epoch)
	})
}

// expire resets the pipeline once the grace period passes with no observers
func (p *Pipeline) expire(epoch uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || epoch != p.graceEpoch || p.observers > 0 {
		return
	}

	p.stopWorkLocked()
	p.graceTimer = nil
	p.active = false
	seq := p.snap.Seq
	p.snap = p.initialSnapshot(p.snap.Generation + 1)
	p.snap.Seq = seq
	p.metrics.PipelineReset.Inc()
	p.metrics.ResultsLast.Set(float64(len(p.snap.Results)))

	p.logger.Info("no observers left, pipeline reset", zap.Duration("grace", p.grace))
	p.publishLocked(func(s domain.SearchSnapshot) eventbus.DomainEvent {
		return domain.PipelineResetEvent{Snapshot: s}
	})
}

// Close stops all timers and cancels in-flight work. Later calls are no-ops.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.stopWorkLocked()
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
	p.active = false
	p.mu.Unlock()

	if p.ownsBus {
		p.bus.Close()
	}
}

// observer drops snapshots older than the last one it delivered, so the
// initial delivery and queued bus events can't step backwards.
type observer struct {
	mu      sync.Mutex
	fn      func(domain.SearchSnapshot)
	lastSeq uint64
}

func (o *observer) onEvent(e eventbus.DomainEvent) {
	if se, ok := e.(domain.SnapshotEvent); ok {
		o.deliver(se.State())
	}
}

func (o *observer) deliver(s domain.SearchSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s.Seq <= o.lastSeq {
		return
	}
	o.lastSeq = s.Seq
	o.fn(s)
}
