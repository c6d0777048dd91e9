package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/module"
)

// command is one requested output write. A revert duration > 0 schedules
// the opposite value that long after a confirmed write (timed commands).
type command struct {
	value  bool
	revert time.Duration
}

// outputWorker serialises writes to one output. At most one command is in
// flight and at most one is queued; a command arriving while the slot is
// occupied supersedes the queued one. The last writer wins — intermediate
// values that were never applied are never applied later either.
type outputWorker struct {
	engine *Engine
	out    module.DigitalOutput

	// pending is the single queue slot.
	pending chan command
}

func (e *Engine) newOutputWorker(out module.DigitalOutput) *outputWorker {
	return &outputWorker{
		engine:  e,
		out:     out,
		pending: make(chan command, 1),
	}
}

// enqueue places a command in the queue slot, displacing any command
// already waiting there.
func (w *outputWorker) enqueue(cmd command) {
	for {
		select {
		case w.pending <- cmd:
			return
		default:
		}
		// Slot occupied: evict the stale command and try again. The loop
		// covers the race where the worker drains the slot between our
		// eviction and our send.
		select {
		case <-w.pending:
		default:
		}
	}
}

func (w *outputWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-w.pending:
			w.execute(ctx, cmd)
		}
	}
}

// execute applies one command: write with retries, then publish the state
// topic, persist, and schedule any timed revert. State is published only
// after the hardware confirmed the write, so the state topic never claims
// a value the pin does not hold.
func (w *outputWorker) execute(ctx context.Context, cmd command) {
	log := w.engine.logger.With("output", w.out.Config.Name)

	if err := w.engine.writeOutput(ctx, w.out, cmd.value); err != nil {
		if ctx.Err() == nil {
			log.Error("output write failed", "value", cmd.value, "error", err)
		}
		return
	}

	w.engine.publishOutputState(w.out, cmd.value)

	if w.out.Config.Persist && w.engine.store != nil {
		if err := w.engine.store.SaveOutputState(ctx, w.out.Config.Name, cmd.value); err != nil {
			log.Warn("persisting output state failed", "error", err)
		}
	}

	if cmd.revert > 0 {
		revertValue := !cmd.value
		time.AfterFunc(cmd.revert, func() {
			if ctx.Err() != nil {
				return
			}
			w.enqueue(command{value: revertValue})
		})
	}
}

// writeOutput drives a logical value onto the pin, retrying transient
// failures with a fixed backoff.
func (e *Engine) writeOutput(ctx context.Context, out module.DigitalOutput, value bool) error {
	physical := out.Physical(value)

	var lastErr error
	for attempt := 1; attempt <= e.cfg.WriteRetries; attempt++ {
		lastErr = hardware.WritePinTimeout(ctx, out.IO, out.Config.Pin, physical, e.cfg.HardwareTimeout)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < e.cfg.WriteRetries {
			select {
			case <-time.After(e.cfg.WriteRetryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("%w: %w", ErrWriteFailed, lastErr)
}

// publishOutputState announces a confirmed output value on the state topic.
func (e *Engine) publishOutputState(out module.DigitalOutput, value bool) {
	topic := e.broker.Topics().OutputState(out.Config.Name)
	e.requestPublish(topic, []byte(out.Payload(value)), out.Config.Retained())
	if e.telem != nil {
		e.telem.WritePinState("output", out.Config.Name, value)
	}
}

// subscribeOutput registers the three command topics for one output.
func (e *Engine) subscribeOutput(out module.DigitalOutput, worker *outputWorker) error {
	topics := e.broker.Topics()
	log := e.logger.With("output", out.Config.Name)

	setHandler := func(_ string, payload []byte) error {
		value, ok := out.ParsePayload(string(payload))
		if !ok {
			log.Warn("ignoring unrecognised command payload", "payload", string(payload))
			return nil
		}
		worker.enqueue(command{value: value})
		return nil
	}

	timedHandler := func(value bool) func(string, []byte) error {
		return func(_ string, payload []byte) error {
			ms, err := strconv.Atoi(string(payload))
			if err != nil || ms <= 0 {
				log.Warn("ignoring invalid millisecond payload", "payload", string(payload))
				return nil
			}
			worker.enqueue(command{value: value, revert: time.Duration(ms) * time.Millisecond})
			return nil
		}
	}

	if err := e.broker.Subscribe(topics.OutputSet(out.Config.Name), e.qos, setHandler); err != nil {
		return fmt.Errorf("subscribing output %q: %w", out.Config.Name, err)
	}
	if err := e.broker.Subscribe(topics.OutputSetOnMS(out.Config.Name), e.qos, timedHandler(true)); err != nil {
		return fmt.Errorf("subscribing output %q: %w", out.Config.Name, err)
	}
	if err := e.broker.Subscribe(topics.OutputSetOffMS(out.Config.Name), e.qos, timedHandler(false)); err != nil {
		return fmt.Errorf("subscribing output %q: %w", out.Config.Name, err)
	}

	return nil
}
