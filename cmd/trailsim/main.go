package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trail-simulator/internal/config"
	"trail-simulator/internal/geo"
	"trail-simulator/internal/hike"
	"trail-simulator/internal/metrics"
	"trail-simulator/internal/publisher"
	"trail-simulator/internal/trailfile"
)

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	trail, err := trailfile.Load(cfg.TrailFile, cfg.TrailName)
	if err != nil {
		log.Fatalf("load trail %q: %v", cfg.TrailFile, err)
	}
	log.Printf("loaded trail %q: %d points, %.2f km", trail.Name, trail.Len(), trail.TotalDistanceKm())

	// Metrics setup
	var mcol *metrics.Collector
	var metricsSrvCancel context.CancelFunc
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.SpeedMps, cfg.TickInterval, trail.TotalDistanceKm())
		mctx, mcancel := context.WithCancel(context.Background())
		metricsSrvCancel = mcancel
		srv := mcol.Serve(cfg.MetricsAddr)
		go func() {
			<-mctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// NATS is optional; without it positions are only logged
	var pub *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewNATSPublisher(cfg.NATSURL, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer pub.Close()
	}

	start, ok := trail.First()
	if cfg.StartLat != nil && cfg.StartLon != nil {
		start, ok = geo.Coordinate{Lat: *cfg.StartLat, Lon: *cfg.StartLon}, true
	}
	if !ok {
		log.Fatalf("trail %q has no points", trail.Name)
	}
	log.Printf("start point is %.2f km along %q", geo.DistanceToClosestKm(trail.Points(), start), trail.Name)

	l := &hikeListener{
		trail:      trail,
		pub:        pub,
		geojsonOut: cfg.GeoJSONOut,
		finished:   make(chan hike.Summary, 1),
	}
	opts := hike.Options{Speed: cfg.SpeedMps, TickInterval: cfg.TickInterval}
	if mcol != nil {
		opts.Metrics = mcol
	}
	sess := hike.NewSession(trail, l, opts)
	if err := sess.Begin(ctx, start); err != nil {
		log.Fatalf("begin hike: %v", err)
	}

	// Block until the hike completes or we are asked to stop
	select {
	case sum := <-l.finished:
		log.Printf("hike complete: %s, %.2f km at %.2f km/h", sum.Elapsed.Round(time.Second), sum.DistanceKm, sum.AvgSpeedKmh)
	case <-ctx.Done():
		if sum, ok := sess.End(); ok {
			log.Printf("hike ended early: %s, %.2f km at %.2f km/h", sum.Elapsed.Round(time.Second), sum.DistanceKm, sum.AvgSpeedKmh)
		}
	}
	sess.Wait()
	if metricsSrvCancel != nil {
		metricsSrvCancel()
	}
	log.Println("shutdown complete")
}

// logEvery throttles position logging; at the default tick this is once per 5s.
const logEvery = 100

type hikeListener struct {
	trail      geo.GeoPath
	pub        *publisher.NATSPublisher
	geojsonOut string
	finished   chan hike.Summary

	updates int
	trace   []geo.Coordinate
}

func (l *hikeListener) OnUpdate(pos geo.Coordinate, bearing float64) {
	l.updates++
	l.trace = append(l.trace, pos)
	if l.updates%logEvery == 1 {
		log.Printf("position %.6f,%.6f bearing %.1f", pos.Lat, pos.Lon, bearing)
	}
	if l.pub == nil {
		return
	}
	msg := publisher.PositionMessage{
		Trail:      l.trail.Name,
		Timestamp:  time.Now().UTC(),
		Lat:        pos.Lat,
		Lon:        pos.Lon,
		BearingDeg: bearing,
	}
	if err := l.pub.PublishPosition(msg); err != nil {
		log.Printf("publish position: %v", err)
	}
}

func (l *hikeListener) OnFinish(sum hike.Summary) {
	if l.pub != nil {
		msg := publisher.SummaryMessage{
			Trail:       sum.Trail,
			Timestamp:   time.Now().UTC(),
			ElapsedSec:  sum.Elapsed.Seconds(),
			DistanceKm:  sum.DistanceKm,
			AvgSpeedKmh: sum.AvgSpeedKmh,
			Completed:   sum.Completed,
		}
		if err := l.pub.PublishSummary(msg); err != nil {
			log.Printf("publish summary: %v", err)
		}
	}
	if l.geojsonOut != "" {
		if err := writeGeoJSON(l.geojsonOut, l.trail, l.trace); err != nil {
			log.Printf("write geojson: %v", err)
		} else {
			log.Printf("wrote %s", l.geojsonOut)
		}
	}
	if sum.Completed {
		l.finished <- sum
	}
}

func writeGeoJSON(path string, trail geo.GeoPath, trace []geo.Coordinate) error {
	b, err := json.MarshalIndent(geo.FeatureCollection(trail, trace), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
