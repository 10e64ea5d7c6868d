package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"truck-eta-service/internal/domain"

	"github.com/nats-io/nats.go"
)

const DefaultSubjectPrefix = "eta"

// NATSPublisher publishes trip results on eta.<vehicle>.<key>.
type NATSPublisher struct {
	nc          *nats.Conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("truck-eta-service"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected err=%v", err)
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
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{nc: nc, prefix: prefix, logSubjects: logSubjects, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

type DelayMessage struct {
	Kind        string    `json:"kind"`
	Label       string    `json:"label"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Arrival     time.Time `json:"arrival"`
	Departure   time.Time `json:"departure"`
	WaitMinutes int       `json:"waitMinutes"`
}

type ResultMessage struct {
	Key        string         `json:"key"`
	VehicleKey string         `json:"vehicleKey,omitempty"`
	ETA        *time.Time     `json:"eta,omitempty"`
	Delays     []DelayMessage `json:"delays,omitempty"`
	Error      string         `json:"error,omitempty"`
	ErrorKind  string         `json:"errorKind,omitempty"`
}

func NewResultMessage(res domain.TripResult) ResultMessage {
	msg := ResultMessage{Key: res.Key, VehicleKey: res.VehicleKey}
	if res.Err != nil {
		msg.Error = res.Err.Error()
		msg.ErrorKind = string(res.Err.Kind)
		return msg
	}
	if res.Schedule == nil {
		return msg
	}

	eta := res.Schedule.ETA
	msg.ETA = &eta
	for _, ev := range res.Schedule.Events {
		if ev.Delay == nil {
			continue
		}
		msg.Delays = append(msg.Delays, DelayMessage{
			Kind:        string(ev.Delay.Kind),
			Label:       ev.Delay.Label,
			Lat:         ev.Location.Lat,
			Lon:         ev.Location.Lon,
			Arrival:     ev.Delay.HitAt,
			Departure:   ev.DepartAt(),
			WaitMinutes: ev.WaitMinutes(),
		})
	}
	return msg
}

func (p *NATSPublisher) Subject(res domain.TripResult) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, subjectToken(res.VehicleKey), subjectToken(res.Key))
}

// PublishResult implements ports.ResultPublisher.
func (p *NATSPublisher) PublishResult(ctx context.Context, res domain.TripResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := p.Subject(res)
	b, err := json.Marshal(NewResultMessage(res))
	if err != nil {
		return fmt.Errorf("marshal result key=%s: %w", res.Key, err)
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
	if err != nil {
		return fmt.Errorf("nats publish subject=%s: %w", subject, err)
	}
	return nil
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain spaces, '>', '*', or '.'.
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
