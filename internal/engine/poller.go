package engine

import (
	"context"
	"time"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/module"
)

// degradedThreshold is the number of consecutive read failures after which
// an input is logged as degraded. Polling continues regardless; the input
// recovers silently on the next good read.
const degradedThreshold = 3

// inputPoller samples one digital input on the scan tick, debounces it and
// publishes committed transitions that pass the edge filter.
type inputPoller struct {
	engine *Engine
	input  module.DigitalInput
	topic  string

	debounce *debouncer
	failures int
	degraded bool
}

func (e *Engine) newInputPoller(in module.DigitalInput) *inputPoller {
	return &inputPoller{
		engine: e,
		input:  in,
		topic:  e.broker.Topics().Input(in.Config.Name),
	}
}

func (p *inputPoller) run(ctx context.Context) {
	log := p.engine.logger.With("input", p.input.Config.Name)

	// Seed the debouncer with the real pin state and announce it, so
	// consumers see the position the hardware is actually in rather than
	// waiting for the first transition.
	initial, err := hardware.ReadPinTimeout(ctx, p.input.IO, p.input.Config.Pin, p.engine.cfg.HardwareTimeout)
	if err != nil {
		log.Warn("initial read failed, assuming off", "error", err)
		initial = false
	}
	logical := p.input.Logical(initial)
	p.debounce = newDebouncer(p.input.Config.Debounce, logical)
	p.publish(logical)

	ticker := time.NewTicker(p.engine.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.scan(ctx, now, log)
		}
	}
}

func (p *inputPoller) scan(ctx context.Context, now time.Time, log logger) {
	raw, err := hardware.ReadPinTimeout(ctx, p.input.IO, p.input.Config.Pin, p.engine.cfg.HardwareTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.failures++
		if p.failures == degradedThreshold {
			p.degraded = true
			log.Error("input degraded, reads failing", "consecutive_failures", p.failures, "error", err)
		}
		return
	}

	if p.degraded {
		log.Info("input recovered")
	}
	p.failures = 0
	p.degraded = false

	changed, value := p.debounce.observe(p.input.Logical(raw), now)
	if changed && edgeAllows(p.input.Config.InterruptEdge, value) {
		p.publish(value)
	}
}

func (p *inputPoller) publish(value bool) {
	p.engine.requestPublish(p.topic, []byte(p.input.Payload(value)), p.input.Config.Retained())
	if p.engine.telem != nil {
		p.engine.telem.WritePinState("input", p.input.Config.Name, value)
	}
}

// logger is the subset of logging.Logger the workers use; it keeps worker
// helpers testable without a full logger setup.
type logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
