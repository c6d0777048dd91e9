package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes YAML content to a temp file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
mqtt:
  broker:
    host: localhost
    port: 1883
  topic_prefix: home/test
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.TopicPrefix != "home/test" {
		t.Errorf("TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "home/test")
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("QoS = %d, want default 1", cfg.MQTT.QoS)
	}
	if cfg.Engine.ScanInterval != 50*time.Millisecond {
		t.Errorf("ScanInterval = %v, want default 50ms", cfg.Engine.ScanInterval)
	}
	if cfg.Engine.PublishBufferSize != 1024 {
		t.Errorf("PublishBufferSize = %d, want default 1024", cfg.Engine.PublishBufferSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "mqtt: [not: valid"))
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
}

func TestTopicPrefixTrailingSlashStripped(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
mqtt:
  topic_prefix: home/test/
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MQTT.TopicPrefix != "home/test" {
		t.Errorf("TopicPrefix = %q, want trailing slash stripped", cfg.MQTT.TopicPrefix)
	}
}

func TestInputDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
gpio_modules:
  - name: pi
    module: raspberrypi
digital_inputs:
  - name: door
    module: pi
    pin: 17
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	in := cfg.DigitalInputs[0]
	if in.OnPayload != "ON" || in.OffPayload != "OFF" {
		t.Errorf("payloads = %q/%q, want ON/OFF", in.OnPayload, in.OffPayload)
	}
	if in.Debounce != 50*time.Millisecond {
		t.Errorf("Debounce = %v, want default 50ms", in.Debounce)
	}
	if in.InterruptEdge != "both" {
		t.Errorf("InterruptEdge = %q, want default both", in.InterruptEdge)
	}
}

func TestRetainDefaultsTrue(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
gpio_modules:
  - name: pi
    module: raspberrypi
digital_inputs:
  - name: door
    module: pi
    pin: 17
  - name: window
    module: pi
    pin: 18
    retain: false
digital_outputs:
  - name: relay
    module: pi
    pin: 4
  - name: beeper
    module: pi
    pin: 5
    retain: false
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.DigitalInputs[0].Retained() {
		t.Error("input without retain: Retained() = false, want true")
	}
	if cfg.DigitalInputs[1].Retained() {
		t.Error("input with retain false: Retained() = true, want false")
	}
	if !cfg.DigitalOutputs[0].Retained() {
		t.Error("output without retain: Retained() = false, want true")
	}
	if cfg.DigitalOutputs[1].Retained() {
		t.Error("output with retain false: Retained() = true, want false")
	}
}

func TestSensorDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
gpio_modules:
  - name: adc
    module: mock
sensor_inputs:
  - name: temp
    module: adc
    channel: 0
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	sens := cfg.Sensors[0]
	if sens.Interval != 60*time.Second {
		t.Errorf("Interval = %v, want default 60s", sens.Interval)
	}
	if sens.Digits != 2 {
		t.Errorf("Digits = %d, want default 2", sens.Digits)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "pullup and pulldown together",
			yaml: minimalConfig + `
gpio_modules:
  - name: pi
    module: raspberrypi
digital_inputs:
  - name: door
    module: pi
    pin: 17
    pullup: true
    pulldown: true
`,
			want: "mutually exclusive",
		},
		{
			name: "bad interrupt edge",
			yaml: minimalConfig + `
gpio_modules:
  - name: pi
    module: raspberrypi
digital_inputs:
  - name: door
    module: pi
    pin: 17
    interrupt_edge: sideways
`,
			want: "interrupt_edge",
		},
		{
			name: "duplicate input names",
			yaml: minimalConfig + `
gpio_modules:
  - name: pi
    module: raspberrypi
digital_inputs:
  - name: door
    module: pi
    pin: 17
  - name: door
    module: pi
    pin: 18
`,
			want: "duplicate",
		},
		{
			name: "identical on and off payloads",
			yaml: minimalConfig + `
gpio_modules:
  - name: pi
    module: raspberrypi
digital_outputs:
  - name: relay
    module: pi
    pin: 4
    on_payload: GO
    off_payload: GO
`,
			want: "must differ",
		},
		{
			name: "persist without database",
			yaml: minimalConfig + `
gpio_modules:
  - name: pi
    module: raspberrypi
digital_outputs:
  - name: relay
    module: pi
    pin: 4
    persist: true
`,
			want: "database.enabled",
		},
		{
			name: "bad initial value",
			yaml: minimalConfig + `
gpio_modules:
  - name: pi
    module: raspberrypi
digital_outputs:
  - name: relay
    module: pi
    pin: 4
    initial: maybe
`,
			want: "initial",
		},
		{
			name: "qos out of range",
			yaml: `
mqtt:
  topic_prefix: home/test
  qos: 3
`,
			want: "qos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil {
				t.Fatal("Load() expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GPIO2MQTT_MQTT_HOST", "broker.example.com")
	t.Setenv("GPIO2MQTT_MQTT_PASSWORD", "hunter2")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.example.com" {
		t.Errorf("Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Auth.Password != "hunter2" {
		t.Errorf("Auth.Password = %q, want env override", cfg.MQTT.Auth.Password)
	}
}

func TestStreamQueueSizeFallsBackToEngine(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
engine:
  stream_queue_size: 16
gpio_modules:
  - name: rs485
    module: serial
    device: /dev/ttyUSB0
streams:
  - name: meter
    module: rs485
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Streams[0].QueueSize != 16 {
		t.Errorf("QueueSize = %d, want engine default 16", cfg.Streams[0].QueueSize)
	}
}
