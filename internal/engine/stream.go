package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/module"
)

// streamReadRetryDelay is the pause after a failed stream read, keeping a
// broken device from spinning its pump at full speed.
const streamReadRetryDelay = 500 * time.Millisecond

// streamRelay moves units between one stream device and its topic pair.
// Two pumps run independently: readPump (device → broker) and writePump
// (broker → device). The write queue is bounded; a unit arriving at a full
// queue displaces the oldest queued unit so the relay tracks fresh traffic
// instead of replaying a stale backlog.
type streamRelay struct {
	engine  *Engine
	stream  module.Stream
	rxTopic string

	writes chan []byte
}

func (e *Engine) newStreamRelay(s module.Stream) *streamRelay {
	return &streamRelay{
		engine:  e,
		stream:  s,
		rxTopic: e.broker.Topics().StreamRX(s.Config.Name),
		writes:  make(chan []byte, s.Config.QueueSize),
	}
}

// readPump publishes every unit the device produces. ReadUnit returning
// (nil, nil) means the device had nothing to say within its read timeout;
// the pump just checks for cancellation and reads again.
func (r *streamRelay) readPump(ctx context.Context) {
	log := r.engine.logger.With("stream", r.stream.Config.Name)

	for {
		if ctx.Err() != nil {
			return
		}

		unit, err := r.stream.RW.ReadUnit()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("stream read failed", "error", err)
			select {
			case <-time.After(streamReadRetryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}
		if len(unit) == 0 {
			continue
		}

		r.engine.requestPublish(r.rxTopic, unit, false)
	}
}

// writePump drains the write queue into the device, one unit per write.
func (r *streamRelay) writePump(ctx context.Context) {
	log := r.engine.logger.With("stream", r.stream.Config.Name)

	for {
		select {
		case <-ctx.Done():
			return
		case unit := <-r.writes:
			err := hardware.WriteUnitTimeout(ctx, r.stream.RW, unit, r.engine.cfg.HardwareTimeout)
			if err != nil && ctx.Err() == nil {
				log.Warn("stream write failed", "bytes", len(unit), "error", err)
			}
		}
	}
}

// enqueueWrite queues one unit for the device, dropping the oldest queued
// unit if the queue is full.
func (r *streamRelay) enqueueWrite(unit []byte) {
	for {
		select {
		case r.writes <- unit:
			return
		default:
		}
		select {
		case <-r.writes:
			r.engine.streamDrops.Add(1)
		default:
		}
	}
}

// subscribeStream registers the TX topic for one stream.
func (e *Engine) subscribeStream(s module.Stream, relay *streamRelay) error {
	topic := e.broker.Topics().StreamTX(s.Config.Name)

	handler := func(_ string, payload []byte) error {
		// Copy: the broker library may reuse the payload buffer.
		unit := make([]byte, len(payload))
		copy(unit, payload)
		relay.enqueueWrite(unit)
		return nil
	}

	if err := e.broker.Subscribe(topic, e.qos, handler); err != nil {
		return fmt.Errorf("subscribing stream %q: %w", s.Config.Name, err)
	}
	return nil
}
