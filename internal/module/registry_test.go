package module

import (
	"errors"
	"testing"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	_ "github.com/nerrad567/gpio2mqtt/internal/hardware/mock"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/logging"
)

// digitalOnly is a test backend without analog or stream support.
type digitalOnly struct{}

func (digitalOnly) Kind() string { return "digitalonly" }
func (digitalOnly) Close() error { return nil }
func (digitalOnly) SetupPin(pin int, dir hardware.PinDirection, pull hardware.Pull, opts hardware.PinOptions) error {
	return nil
}
func (digitalOnly) ReadPin(pin int) (bool, error)    { return false, nil }
func (digitalOnly) WritePin(pin int, value bool) error { return nil }

func init() {
	hardware.Register("digitalonly", func(cfg config.GPIOModuleConfig) (hardware.Module, error) {
		return digitalOnly{}, nil
	})
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text"}, "test")
}

// baseConfig returns a config with one mock backend and a topic prefix.
func baseConfig() *config.Config {
	return &config.Config{
		MQTT: config.MQTTConfig{
			TopicPrefix: "test",
			Status:      config.MQTTStatusConfig{Topic: "status"},
		},
		GPIOModules: []config.GPIOModuleConfig{
			{Name: "dev0", Type: "mock"},
		},
	}
}

func TestBuildBindsAllCategories(t *testing.T) {
	cfg := baseConfig()
	cfg.DigitalInputs = []config.DigitalInputConfig{
		{Name: "door", Module: "dev0", Pin: 17, InterruptEdge: "both"},
	}
	cfg.DigitalOutputs = []config.DigitalOutputConfig{
		{Name: "relay1", Module: "dev0", Pin: 4, OnPayload: "ON", OffPayload: "OFF"},
	}
	cfg.Sensors = []config.SensorConfig{
		{Name: "temp", Module: "dev0", Channel: 0},
	}
	cfg.Streams = []config.StreamConfig{
		{Name: "meter", Module: "dev0", QueueSize: 8},
	}

	reg, err := Build(cfg, testLogger())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer reg.Close()

	if len(reg.DigitalInputs()) != 1 {
		t.Errorf("DigitalInputs() = %d, want 1", len(reg.DigitalInputs()))
	}
	if len(reg.DigitalOutputs()) != 1 {
		t.Errorf("DigitalOutputs() = %d, want 1", len(reg.DigitalOutputs()))
	}
	if len(reg.Sensors()) != 1 {
		t.Errorf("Sensors() = %d, want 1", len(reg.Sensors()))
	}
	if len(reg.Streams()) != 1 {
		t.Errorf("Streams() = %d, want 1", len(reg.Streams()))
	}

	if _, ok := reg.Output("relay1"); !ok {
		t.Error("Output(relay1) not found")
	}
	if _, ok := reg.Output("nope"); ok {
		t.Error("Output(nope) found, want miss")
	}
}

func TestBuildUnknownModuleReference(t *testing.T) {
	cfg := baseConfig()
	cfg.DigitalInputs = []config.DigitalInputConfig{
		{Name: "door", Module: "ghost", Pin: 17},
	}

	_, err := Build(cfg, testLogger())
	if !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("Build() error = %v, want ErrUnknownModule", err)
	}
}

func TestBuildUnknownBackendType(t *testing.T) {
	cfg := baseConfig()
	cfg.GPIOModules[0].Type = "no-such-chip"

	_, err := Build(cfg, testLogger())
	if !errors.Is(err, hardware.ErrUnknownBackend) {
		t.Fatalf("Build() error = %v, want hardware.ErrUnknownBackend", err)
	}
}

func TestBuildCapabilityMismatch(t *testing.T) {
	cfg := baseConfig()
	cfg.GPIOModules = append(cfg.GPIOModules, config.GPIOModuleConfig{Name: "dio", Type: "digitalonly"})
	cfg.Sensors = []config.SensorConfig{
		{Name: "temp", Module: "dio", Channel: 0},
	}

	_, err := Build(cfg, testLogger())
	if !errors.Is(err, hardware.ErrUnsupported) {
		t.Fatalf("Build() error = %v, want hardware.ErrUnsupported", err)
	}
}

func TestBuildTopicCollision(t *testing.T) {
	cfg := baseConfig()
	// The status topic lands on the same full topic as the input.
	cfg.MQTT.Status.Topic = "input/door"
	cfg.DigitalInputs = []config.DigitalInputConfig{
		{Name: "door", Module: "dev0", Pin: 17, InterruptEdge: "both"},
	}

	_, err := Build(cfg, testLogger())
	if !errors.Is(err, ErrDuplicateTopic) {
		t.Fatalf("Build() error = %v, want ErrDuplicateTopic", err)
	}
}

func TestDigitalInputLogical(t *testing.T) {
	in := DigitalInput{Config: config.DigitalInputConfig{Invert: true, OnPayload: "ON", OffPayload: "OFF"}}

	if in.Logical(true) {
		t.Error("Logical(true) with invert = true, want false")
	}
	if in.Payload(true) != "ON" || in.Payload(false) != "OFF" {
		t.Error("Payload() mapping wrong")
	}
}

func TestDigitalOutputParsePayload(t *testing.T) {
	out := DigitalOutput{Config: config.DigitalOutputConfig{OnPayload: "ON", OffPayload: "OFF"}}

	if v, ok := out.ParsePayload("ON"); !ok || !v {
		t.Errorf("ParsePayload(ON) = %v, %v", v, ok)
	}
	if v, ok := out.ParsePayload("OFF"); !ok || v {
		t.Errorf("ParsePayload(OFF) = %v, %v", v, ok)
	}
	// Matching is case-sensitive.
	if _, ok := out.ParsePayload("on"); ok {
		t.Error("ParsePayload(on) matched, want case-sensitive miss")
	}
	if _, ok := out.ParsePayload("TOGGLE"); ok {
		t.Error("ParsePayload(TOGGLE) matched, want miss")
	}
}

func TestDigitalOutputPhysical(t *testing.T) {
	out := DigitalOutput{Config: config.DigitalOutputConfig{Invert: true}}
	if out.Physical(true) {
		t.Error("Physical(true) with invert = true, want false")
	}
}
