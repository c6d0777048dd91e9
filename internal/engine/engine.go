package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/logging"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/mqtt"
	"github.com/nerrad567/gpio2mqtt/internal/module"
)

// Broker is the engine's view of the MQTT client. Satisfied by
// *mqtt.Client; tests substitute an in-memory implementation.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
	Topics() mqtt.Topics
}

// Store persists output state across restarts. Satisfied by *database.DB.
type Store interface {
	SaveOutputState(ctx context.Context, name string, value bool) error
	LoadOutputStates(ctx context.Context) (map[string]bool, error)
}

// Telemetry mirrors readings and pin states to a time-series sink.
// Satisfied by *influxdb.Client. Calls must not block.
type Telemetry interface {
	WriteSensorReading(sensor string, value float64)
	WritePinState(category, name string, value bool)
}

// Deps carries everything the engine needs. Store and Telemetry are
// optional; nil disables persistence and telemetry respectively.
type Deps struct {
	Config    config.EngineConfig
	QoS       byte
	Broker    Broker
	Registry  *module.Registry
	Store     Store
	Telemetry Telemetry
	Logger    *logging.Logger
}

// Stats exposes engine counters for logging and tests.
type Stats struct {
	State            ConnectionState
	BufferedMessages int
	DroppedMessages  uint64
	StreamDrops      uint64
}

// Engine synchronises hardware modules with the broker. Create with New,
// then call Run; the engine owns its workers for the lifetime of the
// passed context.
type Engine struct {
	cfg      config.EngineConfig
	qos      byte
	broker   Broker
	registry *module.Registry
	store    Store
	telem    Telemetry
	logger   *logging.Logger

	events   chan event
	snapshot *retainedSnapshot
	buffer   *publishBuffer

	// state is written only by the control loop; stateMu guards reads
	// from Stats callers.
	state   ConnectionState
	stateMu sync.RWMutex

	streamDrops atomic.Uint64
	dropped     atomic.Uint64

	outputWorkers map[string]*outputWorker
}

// New assembles an engine. It does not touch hardware or the broker;
// everything happens in Run.
func New(deps Deps) *Engine {
	return &Engine{
		cfg:           deps.Config,
		qos:           deps.QoS,
		broker:        deps.Broker,
		registry:      deps.Registry,
		store:         deps.Store,
		telem:         deps.Telemetry,
		logger:        deps.Logger,
		events:        make(chan event, 256),
		snapshot:      newRetainedSnapshot(),
		buffer:        newPublishBuffer(deps.Config.PublishBufferSize),
		outputWorkers: make(map[string]*outputWorker),
	}
}

// Run starts the engine and blocks until ctx is cancelled and every worker
// has stopped (or the shutdown grace expires).
//
// Startup order matters and is fixed:
//  1. Restore persisted output states (direct hardware writes, before any
//     command can arrive)
//  2. Subscribe all command and stream topics
//  3. Publish restored and configured-initial output states; input
//     pollers announce theirs as they start
//  4. Start workers and enter the control loop
//
// Returns:
//   - error: ErrShutdownTimeout if workers outlive the grace period, or a
//     startup failure (subscribe error, restore failure)
func (e *Engine) Run(ctx context.Context) error {
	if e.broker.IsConnected() {
		e.setState(Connected)
	} else {
		e.setState(Connecting)
	}

	e.broker.SetOnConnect(func() {
		select {
		case e.events <- connUpEvent{}:
		case <-ctx.Done():
		}
	})
	e.broker.SetOnDisconnect(func(err error) {
		select {
		case e.events <- connDownEvent{err: err}:
		case <-ctx.Done():
		}
	})

	restored, err := e.restoreOutputs(ctx)
	if err != nil {
		return fmt.Errorf("restoring output states: %w", err)
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var wg sync.WaitGroup

	// Command topics must be live before anything announces readiness,
	// so no command published against retained state can slip past us.
	for _, out := range e.registry.DigitalOutputs() {
		worker := e.newOutputWorker(out)
		e.outputWorkers[out.Config.Name] = worker
		if err := e.subscribeOutput(out, worker); err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.run(workerCtx)
		}()
	}

	// Outputs driven to a configured initial level announce it, so the
	// state topic reflects the pin from boot rather than from the first
	// command.
	for _, out := range e.registry.DigitalOutputs() {
		if restored[out.Config.Name] || out.Config.Initial == "" {
			continue
		}
		e.publishOutputState(out, out.Logical(out.Config.Initial == "high"))
	}

	for _, str := range e.registry.Streams() {
		relay := e.newStreamRelay(str)
		if err := e.subscribeStream(str, relay); err != nil {
			return err
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			relay.readPump(workerCtx)
		}()
		go func() {
			defer wg.Done()
			relay.writePump(workerCtx)
		}()
	}

	for _, in := range e.registry.DigitalInputs() {
		poller := e.newInputPoller(in)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.run(workerCtx)
		}()
	}

	for _, sens := range e.registry.Sensors() {
		sched := e.newSensorScheduler(sens)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.run(workerCtx)
		}()
	}

	e.logger.Info("engine running",
		"inputs", len(e.registry.DigitalInputs()),
		"outputs", len(e.registry.DigitalOutputs()),
		"sensors", len(e.registry.Sensors()),
		"streams", len(e.registry.Streams()))

	e.controlLoop(ctx)

	// Shutdown: stop workers, give them the grace period to finish any
	// in-flight hardware operation. Keep draining the event channel so a
	// worker mid-publish can never block on its way out.
	cancelWorkers()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	grace := time.NewTimer(e.cfg.ShutdownGrace)
	defer grace.Stop()
	for {
		select {
		case <-e.events:
		case <-done:
			e.setState(Disconnected)
			return nil
		case <-grace.C:
			e.setState(Disconnected)
			return ErrShutdownTimeout
		}
	}
}

// controlLoop is the single consumer of the event channel and the only
// writer of connection state, snapshot and buffer.
func (e *Engine) controlLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-e.events:
			switch ev := ev.(type) {
			case connUpEvent:
				e.handleConnUp()
			case connDownEvent:
				e.setState(Connecting)
				e.logger.Warn("broker connection lost, buffering", "error", ev.err)
			case publishEvent:
				e.handlePublish(ev.msg)
			}
		}
	}
}

// handleConnUp runs the reconnect sequence. Subscriptions were already
// restored by the broker client before this event fired, so commands
// arriving mid-flush are handled, not lost.
func (e *Engine) handleConnUp() {
	e.setState(Connected)

	snapshot := e.snapshot.all()
	for _, msg := range snapshot {
		if err := e.broker.Publish(msg.topic, msg.payload, e.qos, true); err != nil {
			e.logger.Warn("snapshot republish failed", "topic", msg.topic, "error", err)
		}
	}

	backlog := e.buffer.drain()
	for i, msg := range backlog {
		if err := e.broker.Publish(msg.topic, msg.payload, e.qos, false); err != nil {
			// Re-buffer the remainder; the next reconnect retries them.
			for _, rest := range backlog[i:] {
				e.buffer.push(rest)
			}
			e.logger.Warn("buffer flush interrupted",
				"flushed", i,
				"remaining", len(backlog)-i,
				"error", err)
			return
		}
	}

	e.logger.Info("broker connection restored",
		"snapshot", len(snapshot),
		"flushed", len(backlog))
}

// handlePublish routes one outbound message according to connection state.
func (e *Engine) handlePublish(msg message) {
	if msg.retained {
		e.snapshot.set(msg)
	}

	if e.State() != Connected {
		if !msg.retained {
			e.bufferMessage(msg)
		}
		return
	}

	if err := e.broker.Publish(msg.topic, msg.payload, e.qos, msg.retained); err != nil {
		e.logger.Warn("publish failed", "topic", msg.topic, "error", err)
		if !msg.retained {
			e.bufferMessage(msg)
		}
	}
}

func (e *Engine) bufferMessage(msg message) {
	before := e.buffer.dropped
	e.buffer.push(msg)
	if e.buffer.dropped > before {
		e.dropped.Store(e.buffer.dropped)
		e.logger.Warn("publish buffer full, dropped oldest message",
			"dropped_total", e.buffer.dropped)
	}
}

// requestPublish hands a message to the control loop. Called from workers.
func (e *Engine) requestPublish(topic string, payload []byte, retained bool) {
	e.events <- publishEvent{msg: message{topic: topic, payload: payload, retained: retained}}
}

// restoreOutputs drives persisted states back onto the pins before any
// command subscription is live, so a restart is invisible to consumers.
// It reports which outputs were restored, so their configured initial
// value is not announced over the restored one.
func (e *Engine) restoreOutputs(ctx context.Context) (map[string]bool, error) {
	restored := make(map[string]bool)
	if e.store == nil {
		return restored, nil
	}

	states, err := e.store.LoadOutputStates(ctx)
	if err != nil {
		return nil, err
	}

	for _, out := range e.registry.DigitalOutputs() {
		if !out.Config.Persist {
			continue
		}
		value, ok := states[out.Config.Name]
		if !ok {
			continue
		}
		if err := e.writeOutput(ctx, out, value); err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Config.Name, err)
		}
		e.publishOutputState(out, value)
		restored[out.Config.Name] = true
		e.logger.Info("output state restored", "output", out.Config.Name, "value", value)
	}

	return restored, nil
}

func (e *Engine) setState(s ConnectionState) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

// State returns the current connection state.
func (e *Engine) State() ConnectionState {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

// Stats returns current counters. Buffer length is read from the control
// loop's structures without locking; the value is advisory.
func (e *Engine) Stats() Stats {
	return Stats{
		State:            e.State(),
		BufferedMessages: e.buffer.len(),
		DroppedMessages:  e.dropped.Load(),
		StreamDrops:      e.streamDrops.Load(),
	}
}
