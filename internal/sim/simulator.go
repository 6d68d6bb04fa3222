package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"trail-simulator/internal/geo"
)

const (
	DefaultSpeed        = 20.0 // meters per second
	DefaultTickInterval = 50 * time.Millisecond

	// minSegment guards the interpolation divisor.
	minSegment = 0.0001
)

// ErrAlreadyStarted is returned by Start on anything but an idle simulator.
var ErrAlreadyStarted = errors.New("simulator already started")

// State is the lifecycle of a Simulator. Stopped and Completed are terminal.
type State int

const (
	Idle State = iota
	Running
	Stopped
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// EventKind distinguishes position updates from the completion signal.
type EventKind int

const (
	Update EventKind = iota
	Complete
)

func (k EventKind) String() string {
	if k == Complete {
		return "complete"
	}
	return "update"
}

// Event is what a tick produces.
type Event struct {
	Kind     EventKind
	Position geo.Coordinate
	Bearing  float64 // degrees in [0, 360)
	Segment  int
	Fraction float64 // raw interpolation parameter within Segment
	Eased    float64 // geo.Ease(Fraction); positions are not blended with it
	Traveled float64 // meters from the first point
}

// SimulationState is the mutable cursor of a running simulation.
type SimulationState struct {
	SegmentIndex         int
	DistanceAlongSegment float64
}

// Observer receives tick level instrumentation. All methods must be cheap.
type Observer interface {
	TickObserve(d time.Duration)
	UpdateInc()
	DegenerateInc()
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSpeed sets the ground speed in meters per second. Non-positive values are ignored.
func WithSpeed(mps float64) Option {
	return func(s *Simulator) {
		if mps > 0 {
			s.speed = mps
		}
	}
}

// WithTickInterval sets the driver period, which is also the per-tick time step.
func WithTickInterval(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithObserver attaches instrumentation.
func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observer = o }
}

// Simulator moves a virtual position along a polyline at constant speed.
// A Simulator runs once; construct a new one to run again.
type Simulator struct {
	points   []geo.Coordinate
	cum      []float64
	speed    float64
	interval time.Duration
	observer Observer

	mu     sync.Mutex
	status State
	cur    SimulationState
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds an idle simulator over a copy of points.
func New(points []geo.Coordinate, opts ...Option) *Simulator {
	cp := make([]geo.Coordinate, len(points))
	copy(cp, points)
	s := &Simulator{
		points:   cp,
		cum:      geo.CumDistances(cp),
		speed:    DefaultSpeed,
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Speed() float64              { return s.speed }
func (s *Simulator) TickInterval() time.Duration { return s.interval }

// State reports the lifecycle state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns the current cursor.
func (s *Simulator) Snapshot() SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Advance applies one tick of dt. It reports false when the tick yields no
// event: a zero-length segment was skipped, or the simulation is already over.
// Advance is the whole state machine; Start only drives it from a ticker.
func (s *Simulator) Advance(dt time.Duration) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == Completed || s.status == Stopped {
		return Event{}, false
	}
	last := len(s.points) - 1
	if s.cur.SegmentIndex >= last {
		return s.completeLocked(), true
	}

	start, end := s.points[s.cur.SegmentIndex], s.points[s.cur.SegmentIndex+1]
	segment := geo.Distance(start, end)
	if segment == 0 {
		s.cur.SegmentIndex++
		s.cur.DistanceAlongSegment = 0
		if s.observer != nil {
			s.observer.DegenerateInc()
		}
		return Event{}, false
	}

	s.cur.DistanceAlongSegment += s.speed * dt.Seconds()

	for s.cur.DistanceAlongSegment >= segment && s.cur.SegmentIndex < last {
		s.cur.DistanceAlongSegment -= segment
		s.cur.SegmentIndex++
		if s.cur.SegmentIndex >= last {
			return s.completeLocked(), true
		}
		start, end = s.points[s.cur.SegmentIndex], s.points[s.cur.SegmentIndex+1]
		segment = geo.Distance(start, end)
	}

	t := geo.Clamp(s.cur.DistanceAlongSegment/max(segment, minSegment), 0, 1)
	ev := Event{
		Kind:     Update,
		Position: geo.Interpolate(start, end, t),
		Bearing:  geo.Bearing(start, end),
		Segment:  s.cur.SegmentIndex,
		Fraction: t,
		Eased:    geo.Ease(t),
		Traveled: s.cum[s.cur.SegmentIndex] + t*segment,
	}
	if s.observer != nil {
		s.observer.UpdateInc()
	}
	return ev, true
}

func (s *Simulator) completeLocked() Event {
	s.status = Completed
	ev := Event{Kind: Complete, Segment: max(len(s.points)-1, 0)}
	if n := len(s.points); n > 0 {
		ev.Position = s.points[n-1]
		ev.Traveled = s.cum[n-1]
	}
	if n := len(s.points); n > 1 {
		ev.Bearing = geo.Bearing(s.points[n-2], s.points[n-1])
		ev.Fraction, ev.Eased = 1, 1
	}
	return ev
}

// Start launches the ticker driver and returns the event stream. The channel
// is closed after the completion event, on Stop, or when ctx is cancelled.
// Paths with fewer than two points complete immediately.
func (s *Simulator) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Idle {
		return nil, ErrAlreadyStarted
	}
	s.status = Running
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	out := make(chan Event)
	go s.run(ctx, out)
	return out, nil
}

func (s *Simulator) run(ctx context.Context, out chan<- Event) {
	defer close(s.done)
	defer close(out)
	defer s.cancel()

	if len(s.points) < 2 {
		if ev, ok := s.Advance(0); ok && !s.emit(ctx, out, ev) {
			s.markStopped()
		}
		return
	}

	tick := time.NewTicker(s.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return
		case <-tick.C:
		}
		tickStart := time.Now()
		ev, ok := s.Advance(s.interval)
		if s.observer != nil {
			s.observer.TickObserve(time.Since(tickStart))
		}
		if !ok {
			if s.State() != Running {
				return
			}
			continue
		}
		if !s.emit(ctx, out, ev) {
			s.markStopped()
			return
		}
		if ev.Kind == Complete {
			return
		}
	}
}

// emit hands ev to the consumer unless the driver is being stopped.
func (s *Simulator) emit(ctx context.Context, out chan<- Event, ev Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case out <- ev:
		return true
	}
}

func (s *Simulator) markStopped() {
	s.mu.Lock()
	if s.status == Running {
		s.status = Stopped
	}
	s.mu.Unlock()
}

// Stop halts the driver and waits for it to exit; no event is delivered after
// Stop returns. It is safe to call repeatedly and on a simulator never started.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if s.status == Running {
		s.status = Stopped
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
