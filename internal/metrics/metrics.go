package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	ActiveHikes prometheus.Gauge

	HikesStarted  prometheus.Counter
	HikesFinished *prometheus.CounterVec // outcome label: completed|stopped

	UpdatesEmitted     prometheus.Counter
	DegenerateSegments prometheus.Counter
	TickDuration       prometheus.Histogram

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	SpeedMps     prometheus.Gauge
	TickInterval prometheus.Gauge // seconds
	TrailLength  prometheus.Gauge // km
}

func NewCollector(speedMps float64, tickInterval time.Duration, trailKm float64) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ActiveHikes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trailsim_active_hikes",
			Help: "Number of hikes currently being simulated.",
		}),
		HikesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailsim_hikes_started_total",
			Help: "Total hikes started.",
		}),
		HikesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trailsim_hikes_finished_total",
			Help: "Total hikes finished, by outcome.",
		}, []string{"outcome"}),
		UpdatesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailsim_position_updates_total",
			Help: "Total position updates emitted by simulators.",
		}),
		DegenerateSegments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailsim_degenerate_segments_total",
			Help: "Zero-length segments skipped during simulation.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trailsim_tick_duration_seconds",
			Help:    "Duration of simulation tick computations.",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailsim_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailsim_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trailsim_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trailsim_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		SpeedMps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trailsim_speed_mps",
			Help: "Configured ground speed in meters per second.",
		}),
		TickInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trailsim_tick_interval_seconds",
			Help: "Tick interval in seconds.",
		}),
		TrailLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trailsim_trail_length_km",
			Help: "Along-path length of the loaded trail.",
		}),
	}

	reg.MustRegister(
		c.ActiveHikes, c.HikesStarted, c.HikesFinished,
		c.UpdatesEmitted, c.DegenerateSegments, c.TickDuration,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.SpeedMps, c.TickInterval, c.TrailLength,
	)

	c.SpeedMps.Set(speedMps)
	c.TickInterval.Set(tickInterval.Seconds())
	c.TrailLength.Set(trailKm)

	return c
}

// TickObserve, UpdateInc and DegenerateInc satisfy sim.Observer.
func (c *Collector) TickObserve(d time.Duration) { c.TickDuration.Observe(d.Seconds()) }
func (c *Collector) UpdateInc()                  { c.UpdatesEmitted.Inc() }
func (c *Collector) DegenerateInc()              { c.DegenerateSegments.Inc() }

func (c *Collector) HikeStarted() {
	c.HikesStarted.Inc()
	c.ActiveHikes.Inc()
}

func (c *Collector) HikeFinished(completed bool) {
	outcome := "stopped"
	if completed {
		outcome = "completed"
	}
	c.HikesFinished.WithLabelValues(outcome).Inc()
	c.ActiveHikes.Dec()
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
