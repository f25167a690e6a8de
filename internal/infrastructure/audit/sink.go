// Package audit writes security-relevant events to the structured log
// without ever blocking the request path.
package audit

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/societyhub/backoffice-api/internal/core/ports"
)

const channelBuffer = 256

// Sink queues events on a buffered channel drained by a single background
// goroutine. When the buffer is full the event is dropped and counted; a
// slow or failed audit log must never fail a request.
type Sink struct {
	events  chan ports.AuditEvent
	log     zerolog.Logger
	dropped atomic.Int64
}

// NewSink creates a Sink writing to the given logger.
func NewSink(log zerolog.Logger) *Sink {
	return &Sink{
		events: make(chan ports.AuditEvent, channelBuffer),
		log:    log,
	}
}

// Start launches the drain goroutine. It stops when ctx is cancelled.
func (s *Sink) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-s.events:
				if !ok {
					return
				}
				s.write(e)
			}
		}
	}()
}

// Record enqueues an event. Fire-and-forget: a full buffer drops the event.
func (s *Sink) Record(event ports.AuditEvent) {
	select {
	case s.events <- event:
	default:
		s.dropped.Add(1)
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Sink) write(e ports.AuditEvent) {
	s.log.Info().
		Str("kind", e.Kind).
		Str("provider", e.Provider).
		Str("reference", e.Reference).
		Str("route", e.Route).
		Str("remote_addr", e.RemoteAddr).
		Str("detail", e.Detail).
		Time("at", e.At).
		Msg("audit")
}
