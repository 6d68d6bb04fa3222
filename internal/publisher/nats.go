package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	nc          *nats.Conn
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("trail-simulator"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, logSubjects: logSubjects, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// PositionMessage is one blue dot update.
type PositionMessage struct {
	Trail      string    `json:"trail"`
	Timestamp  time.Time `json:"timestamp"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	BearingDeg float64   `json:"bearing"`
}

// SummaryMessage is published once when a hike ends.
type SummaryMessage struct {
	Trail       string    `json:"trail"`
	Timestamp   time.Time `json:"timestamp"`
	ElapsedSec  float64   `json:"elapsedSec"`
	DistanceKm  float64   `json:"distanceKm"`
	AvgSpeedKmh float64   `json:"avgSpeedKmh"`
	Completed   bool      `json:"completed"`
}

// PositionSubject and SummarySubject name the subjects for a trail.
func PositionSubject(trail string) string { return "trail." + subjectToken(trail) + ".position" }
func SummarySubject(trail string) string  { return "trail." + subjectToken(trail) + ".summary" }

func (p *NATSPublisher) PublishPosition(msg PositionMessage) error {
	return p.publish(PositionSubject(msg.Trail), msg)
}

func (p *NATSPublisher) PublishSummary(msg SummaryMessage) error {
	return p.publish(SummarySubject(msg.Trail), msg)
}

func (p *NATSPublisher) publish(subject string, msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s", subject)
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
