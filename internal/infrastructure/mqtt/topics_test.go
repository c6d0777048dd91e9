package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{Prefix: "home/garage"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"input", topics.Input("door"), "home/garage/input/door"},
		{"output set", topics.OutputSet("relay1"), "home/garage/output/relay1/set"},
		{"output set_on_ms", topics.OutputSetOnMS("relay1"), "home/garage/output/relay1/set_on_ms"},
		{"output set_off_ms", topics.OutputSetOffMS("relay1"), "home/garage/output/relay1/set_off_ms"},
		{"output state", topics.OutputState("relay1"), "home/garage/output/relay1/state"},
		{"sensor", topics.Sensor("temp"), "home/garage/sensor/temp"},
		{"stream rx", topics.StreamRX("rs485"), "home/garage/stream/rs485/rx"},
		{"stream tx", topics.StreamTX("rs485"), "home/garage/stream/rs485/tx"},
		{"status", topics.Status("status"), "home/garage/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
