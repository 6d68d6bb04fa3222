package hike

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"trail-simulator/internal/geo"
	"trail-simulator/internal/sim"
)

var (
	ErrNoTrail       = errors.New("no trail loaded")
	ErrAlreadyActive = errors.New("a hike is already in progress")
)

// Listener receives hike events. Calls for one session are never concurrent.
type Listener interface {
	OnUpdate(pos geo.Coordinate, bearing float64)
	OnFinish(sum Summary)
}

// Metrics extends the simulator observer with hike lifecycle counters.
type Metrics interface {
	sim.Observer
	HikeStarted()
	HikeFinished(completed bool)
}

type Options struct {
	Speed        float64       // meters per second, sim.DefaultSpeed when zero
	TickInterval time.Duration // sim.DefaultTickInterval when zero
	Metrics      Metrics
	Now          func() time.Time
}

// TrailInfo is what a tap on the trail reveals.
type TrailInfo struct {
	Name       string
	DistanceKm float64
}

// Summary describes a finished hike.
type Summary struct {
	Trail       string
	Elapsed     time.Duration
	DistanceKm  float64
	AvgSpeedKmh float64
	Points      int
	Completed   bool // false when ended early
}

// Session owns a trail and at most one running simulator over it.
type Session struct {
	trail    geo.GeoPath
	opts     Options
	listener Listener

	mu        sync.Mutex
	active    *sim.Simulator
	pumpDone  chan struct{}
	trace     []geo.Coordinate
	startedAt time.Time
	last      Summary
	wg        sync.WaitGroup
}

func NewSession(trail geo.GeoPath, listener Listener, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{trail: trail, opts: opts, listener: listener}
}

// Trail returns the session's path.
func (s *Session) Trail() geo.GeoPath { return s.trail }

// Inspect returns the trail name and the along-trail distance to the point
// nearest to tap.
func (s *Session) Inspect(tap geo.Coordinate) (TrailInfo, error) {
	if s.trail.Empty() {
		return TrailInfo{}, ErrNoTrail
	}
	return TrailInfo{
		Name:       s.trail.Name,
		DistanceKm: geo.DistanceToClosestKm(s.trail.Points(), tap),
	}, nil
}

// Active reports whether a hike is running.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// Trace returns a copy of the positions visited by the current or last hike.
func (s *Session) Trace() []geo.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]geo.Coordinate, len(s.trace))
	copy(cp, s.trace)
	return cp
}

// Begin starts a hike from the trail point nearest to start. A running hike
// must be ended first.
func (s *Session) Begin(ctx context.Context, start geo.Coordinate) error {
	if s.trail.Empty() {
		return ErrNoTrail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ErrAlreadyActive
	}

	idx := s.trail.NearestIndex(start)
	opts := []sim.Option{sim.WithSpeed(s.opts.Speed), sim.WithTickInterval(s.opts.TickInterval)}
	if s.opts.Metrics != nil {
		opts = append(opts, sim.WithObserver(s.opts.Metrics))
	}
	simulator := sim.New(s.trail.Suffix(idx), opts...)
	events, err := simulator.Start(ctx)
	if err != nil {
		return err
	}

	s.active = simulator
	s.trace = nil
	s.startedAt = s.opts.Now()
	done := make(chan struct{})
	s.pumpDone = done
	if s.opts.Metrics != nil {
		s.opts.Metrics.HikeStarted()
	}

	log.Printf("starting hike on %q at point %d/%d (%.1f m/s)", s.trail.Name, idx, s.trail.Len(), simulator.Speed())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		s.pump(simulator, events)
	}()
	return nil
}

func (s *Session) pump(simulator *sim.Simulator, events <-chan sim.Event) {
	completed := false
	for ev := range events {
		switch ev.Kind {
		case sim.Update:
			s.mu.Lock()
			s.trace = append(s.trace, ev.Position)
			s.mu.Unlock()
			if s.listener != nil {
				s.listener.OnUpdate(ev.Position, ev.Bearing)
			}
		case sim.Complete:
			completed = true
		}
	}
	if sum, ok := s.finish(simulator, completed); ok && s.listener != nil {
		s.listener.OnFinish(sum)
	}
}

// finish detaches simulator from the session and records the summary.
func (s *Session) finish(simulator *sim.Simulator, completed bool) (Summary, bool) {
	s.mu.Lock()
	if s.active != simulator {
		s.mu.Unlock()
		return Summary{}, false
	}
	s.active = nil
	sum := summarize(s.trail.Name, s.trace, s.opts.Now().Sub(s.startedAt), completed)
	s.last = sum
	s.mu.Unlock()

	simulator.Stop()
	if s.opts.Metrics != nil {
		s.opts.Metrics.HikeFinished(completed)
	}
	log.Printf("finished hike on %q: %s, %.2f km, %.2f km/h (completed=%t)",
		sum.Trail, sum.Elapsed.Round(time.Second), sum.DistanceKm, sum.AvgSpeedKmh, completed)
	return sum, true
}

// End stops the running hike and returns its summary once the listener has
// seen OnFinish. It must not be called from a Listener callback.
func (s *Session) End() (Summary, bool) {
	s.mu.Lock()
	simulator, done := s.active, s.pumpDone
	s.mu.Unlock()
	if simulator == nil {
		return Summary{}, false
	}

	simulator.Stop()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, true
}

// Last returns the summary of the most recent finished hike.
func (s *Session) Last() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, !s.startedAt.IsZero() && s.active == nil
}

// Wait blocks until every event pump has exited.
func (s *Session) Wait() { s.wg.Wait() }

func summarize(trail string, trace []geo.Coordinate, elapsed time.Duration, completed bool) Summary {
	km := geo.TotalDistanceKm(trace)
	avg := 0.0
	if h := elapsed.Hours(); h > 0 {
		avg = km / h
	}
	return Summary{
		Trail:       trail,
		Elapsed:     elapsed,
		DistanceKm:  km,
		AvgSpeedKmh: avg,
		Points:      len(trace),
		Completed:   completed,
	}
}
