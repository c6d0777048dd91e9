package module

import (
	"fmt"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/logging"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/mqtt"
)

// Registry holds every bound module, grouped by category in the order the
// configuration declared them.
type Registry struct {
	backends     map[string]hardware.Module
	backendOrder []string
	cleanup      map[string]bool

	inputs  []DigitalInput
	outputs []DigitalOutput
	sensors []Sensor
	streams []Stream

	logger *logging.Logger
}

// Build opens every configured backend, binds each logical module to its
// backend with a capability check, configures pins, and verifies the topic
// map. On any error, already-opened backends are closed before returning.
//
// Parameters:
//   - cfg: Validated configuration
//   - logger: Structured logger for startup diagnostics
//
// Returns:
//   - *Registry: Bound modules ready for the engine
//   - error: ErrUnknownModule, ErrDuplicateTopic, hardware.ErrUnsupported
//     (wrapped), or a backend open/setup failure
func Build(cfg *config.Config, logger *logging.Logger) (*Registry, error) {
	r := &Registry{
		backends: make(map[string]hardware.Module),
		cleanup:  make(map[string]bool),
		logger:   logger,
	}

	for _, modCfg := range cfg.GPIOModules {
		backend, err := hardware.Open(modCfg)
		if err != nil {
			r.closeBackends()
			return nil, err
		}
		r.backends[modCfg.Name] = backend
		r.backendOrder = append(r.backendOrder, modCfg.Name)
		r.cleanup[modCfg.Name] = modCfg.Cleanup

		logger.Info("hardware backend opened",
			"name", modCfg.Name,
			"kind", backend.Kind())
	}

	if err := r.bind(cfg); err != nil {
		r.closeBackends()
		return nil, err
	}

	if err := verifyTopics(cfg); err != nil {
		r.closeBackends()
		return nil, err
	}

	return r, nil
}

// bind resolves every logical module's backend reference and capability,
// then configures its pins.
func (r *Registry) bind(cfg *config.Config) error {
	for _, inCfg := range cfg.DigitalInputs {
		io, err := r.digitalIO(inCfg.Module, "digital input", inCfg.Name)
		if err != nil {
			return err
		}

		pull := hardware.PullNone
		switch {
		case inCfg.PullUp:
			pull = hardware.PullUp
		case inCfg.PullDown:
			pull = hardware.PullDown
		}
		if err := io.SetupPin(inCfg.Pin, hardware.DirectionInput, pull, hardware.PinOptions{}); err != nil {
			return fmt.Errorf("digital input %q: setup pin %d: %w", inCfg.Name, inCfg.Pin, err)
		}

		r.inputs = append(r.inputs, DigitalInput{Config: inCfg, IO: io})
	}

	for _, outCfg := range cfg.DigitalOutputs {
		io, err := r.digitalIO(outCfg.Module, "digital output", outCfg.Name)
		if err != nil {
			return err
		}

		var opts hardware.PinOptions
		switch outCfg.Initial {
		case "high":
			high := true
			opts.Initial = &high
		case "low":
			low := false
			opts.Initial = &low
		}
		if err := io.SetupPin(outCfg.Pin, hardware.DirectionOutput, hardware.PullNone, opts); err != nil {
			return fmt.Errorf("digital output %q: setup pin %d: %w", outCfg.Name, outCfg.Pin, err)
		}

		r.outputs = append(r.outputs, DigitalOutput{Config: outCfg, IO: io})
	}

	for _, sensCfg := range cfg.Sensors {
		backend, ok := r.backends[sensCfg.Module]
		if !ok {
			return fmt.Errorf("%w: sensor %q references %q", ErrUnknownModule, sensCfg.Name, sensCfg.Module)
		}
		reader, ok := backend.(hardware.AnalogReader)
		if !ok {
			return fmt.Errorf("%w: sensor %q needs analog reads from %s backend %q",
				hardware.ErrUnsupported, sensCfg.Name, backend.Kind(), sensCfg.Module)
		}
		r.sensors = append(r.sensors, Sensor{Config: sensCfg, Reader: reader})
	}

	for _, strCfg := range cfg.Streams {
		backend, ok := r.backends[strCfg.Module]
		if !ok {
			return fmt.Errorf("%w: stream %q references %q", ErrUnknownModule, strCfg.Name, strCfg.Module)
		}
		rw, ok := backend.(hardware.StreamReadWriter)
		if !ok {
			return fmt.Errorf("%w: stream %q needs stream I/O from %s backend %q",
				hardware.ErrUnsupported, strCfg.Name, backend.Kind(), strCfg.Module)
		}
		r.streams = append(r.streams, Stream{Config: strCfg, RW: rw})
	}

	return nil
}

// digitalIO resolves a backend reference and asserts digital pin support.
func (r *Registry) digitalIO(ref, category, name string) (hardware.DigitalIO, error) {
	backend, ok := r.backends[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q references %q", ErrUnknownModule, category, name, ref)
	}
	io, ok := backend.(hardware.DigitalIO)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q needs digital pins from %s backend %q",
			hardware.ErrUnsupported, category, name, backend.Kind(), ref)
	}
	return io, nil
}

// verifyTopics checks that no two modules map to the same topic. Name
// uniqueness within a category is already validated at config load; this
// catches cross-category collisions and anything a future topic scheme
// change might introduce.
func verifyTopics(cfg *config.Config) error {
	topics := mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}
	seen := make(map[string]string)

	claim := func(topic, owner string) error {
		if prev, dup := seen[topic]; dup {
			return fmt.Errorf("%w: %s and %s both map to %q", ErrDuplicateTopic, prev, owner, topic)
		}
		seen[topic] = owner
		return nil
	}

	if err := claim(topics.Status(cfg.MQTT.Status.Topic), "status"); err != nil {
		return err
	}
	for _, in := range cfg.DigitalInputs {
		if err := claim(topics.Input(in.Name), "digital input "+in.Name); err != nil {
			return err
		}
	}
	for _, out := range cfg.DigitalOutputs {
		owner := "digital output " + out.Name
		for _, topic := range []string{
			topics.OutputSet(out.Name),
			topics.OutputSetOnMS(out.Name),
			topics.OutputSetOffMS(out.Name),
			topics.OutputState(out.Name),
		} {
			if err := claim(topic, owner); err != nil {
				return err
			}
		}
	}
	for _, sens := range cfg.Sensors {
		if err := claim(topics.Sensor(sens.Name), "sensor "+sens.Name); err != nil {
			return err
		}
	}
	for _, str := range cfg.Streams {
		owner := "stream " + str.Name
		if err := claim(topics.StreamRX(str.Name), owner); err != nil {
			return err
		}
		if err := claim(topics.StreamTX(str.Name), owner); err != nil {
			return err
		}
	}

	return nil
}

// DigitalInputs returns the bound inputs in configuration order.
func (r *Registry) DigitalInputs() []DigitalInput { return r.inputs }

// DigitalOutputs returns the bound outputs in configuration order.
func (r *Registry) DigitalOutputs() []DigitalOutput { return r.outputs }

// Sensors returns the bound sensors in configuration order.
func (r *Registry) Sensors() []Sensor { return r.sensors }

// Streams returns the bound streams in configuration order.
func (r *Registry) Streams() []Stream { return r.streams }

// Output looks up a bound output by name.
func (r *Registry) Output(name string) (DigitalOutput, bool) {
	for _, out := range r.outputs {
		if out.Config.Name == name {
			return out, true
		}
	}
	return DigitalOutput{}, false
}

// Close releases every backend whose configuration enabled cleanup, in
// reverse open order. Backends with cleanup disabled are left as-is so
// other processes sharing the chip keep their state.
func (r *Registry) Close() error {
	var firstErr error
	for i := len(r.backendOrder) - 1; i >= 0; i-- {
		name := r.backendOrder[i]
		if !r.cleanup[name] {
			continue
		}
		if err := r.backends[name].Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing backend %q: %w", name, err)
		}
	}
	return firstErr
}

// closeBackends closes everything unconditionally; used on Build failure
// where leaving half-opened devices behind helps nobody.
func (r *Registry) closeBackends() {
	for i := len(r.backendOrder) - 1; i >= 0; i-- {
		_ = r.backends[r.backendOrder[i]].Close()
	}
}
