package tablesink

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/sirupsen/logrus"
)

const (
	defaultTableName    = "LogEventEntity"
	defaultSuffixLayout = "20060102"
	defaultFlushPeriod  = 2 * time.Second

	// defaultPostingLimit is the pending-event count that triggers a flush
	// ahead of the timer.
	defaultPostingLimit = 100
)

// Sink buffers log events and periodically writes them, in batches, to a
// date-rotated table.
type Sink struct {
	router *tableRouter
	mapper *entityMapper

	ctx context.Context

	closed bool
	err    error

	events eventsBuffer
	kick   chan struct{}
	done   chan struct{}

	throttle <-chan time.Time
	nowFunc  func() time.Time
	logger   logrus.FieldLogger

	sync.Mutex // This protects calls to flush.
}

// WithTableName allows setting the base name of the destination table.
func WithTableName(name string) Option {
	return func(s *Sink) {
		s.router.baseName = name
	}
}

// WithSuffixLayout allows setting the time layout appended to the base table
// name. The default rotates daily.
func WithSuffixLayout(layout string) Option {
	return func(s *Sink) {
		s.router.suffixLayout = layout
	}
}

// WithRowKeySuffix allows setting a fixed string appended to every generated
// row key.
func WithRowKeySuffix(suffix string) Option {
	return func(s *Sink) {
		s.mapper.rowKeySuffix = suffix
	}
}

// WithColumnAllowlist restricts individual property columns to the given
// names. Properties outside the allowlist are dropped entirely, not
// aggregated.
func WithColumnAllowlist(names ...string) Option {
	return func(s *Sink) {
		s.mapper.allowlist = make(map[string]struct{}, len(names))
		for _, name := range names {
			s.mapper.allowlist[name] = struct{}{}
		}
	}
}

// WithMessageFields adds the raw message template and the rendered message as
// columns on every row.
func WithMessageFields() Option {
	return func(s *Sink) {
		s.mapper.includeMessageFields = true
	}
}

// WithLogger allows setting the logger used for the sink's own diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

func freezeTime(now time.Time) Option {
	return func(s *Sink) {
		s.nowFunc = func() time.Time {
			return now
		}
	}
}

// NewSink returns a running sink writing to the given table service. Close it
// to flush the remaining buffer.
func NewSink(ctx context.Context, service ServiceAPI, opts ...Option) *Sink {
	ret := &Sink{
		router: &tableRouter{
			service:      service,
			baseName:     defaultTableName,
			suffixLayout: defaultSuffixLayout,
		},
		mapper: &entityMapper{
			keys:      defaultKeyGenerator{},
			formatter: defaultFormatter{},
		},
		ctx:      ctx,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		throttle: time.Tick(defaultFlushPeriod),
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(ret)
	}

	go ret.start()
	return ret
}

// Emit buffers a single event for shipping. If a flush has failed, subsequent
// calls to Emit return the flush error.
func (s *Sink) Emit(event *LogEvent) error {
	if s.closed {
		return io.ErrClosedPipe
	}

	if s.err != nil {
		return s.err
	}

	if s.events.add(event) >= defaultPostingLimit {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
	return nil
}

// Start continuously flushing the buffered events.
func (s *Sink) start() {
	for {
		select {
		case <-s.done:
			return
		case <-s.throttle:
		case <-s.kick:
		}

		if err := s.flushAll(); err != nil {
			s.logger.WithError(err).Error("could not flush log events")
			return
		}
	}
}

// Close flushes the remaining buffer and stops the flush loop. Any subsequent
// calls to Emit will return io.ErrClosedPipe.
func (s *Sink) Close() error {
	if s.closed {
		return s.err
	}
	s.closed = true
	close(s.done)
	return s.flushAll()
}

func (s *Sink) flushAll() error {
	s.Lock()
	defer s.Unlock()

	events := s.events.drain()

	// No events to flush.
	if len(events) == 0 {
		return nil
	}

	s.err = s.flush(events)
	return s.err
}

// flush maps the drained events to rows and submits the resulting batches
// strictly in order. The destination table is resolved exactly once per
// invocation, so one flush never straddles a suffix rotation.
func (s *Sink) flush(events []*LogEvent) error {
	rows := make([]*aztables.EDMEntity, 0, len(events))
	for _, event := range events {
		rows = append(rows, s.mapper.Map(event))
	}

	batches, err := buildBatches(rows)
	if err != nil {
		return err
	}

	table, err := s.router.resolve(s.ctx, s.now())
	if err != nil {
		return err
	}

	for _, batch := range batches {
		if err := table.SubmitBatch(s.ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) now() time.Time {
	if s.nowFunc == nil {
		return time.Now()
	}
	return s.nowFunc()
}
