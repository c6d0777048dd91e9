package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorReading records one sensor sample.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - sensor: Sensor module name (e.g., "greenhouse_temp")
//   - value: The rounded reading, as published to the broker
func (c *Client) WriteSensorReading(sensor string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor_readings",
		map[string]string{
			"sensor": sensor,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePinState records a confirmed digital pin transition.
//
// Used for both debounced input edges and confirmed output writes, so the
// telemetry store mirrors exactly what was published to the broker.
//
// Parameters:
//   - category: "input" or "output"
//   - name: Module name
//   - value: The logical pin value after the transition
func (c *Client) WritePinState(category, name string, value bool) {
	if !c.IsConnected() {
		return
	}

	v := 0
	if value {
		v = 1
	}

	point := write.NewPoint(
		"pin_states",
		map[string]string{
			"category": category,
			"name":     name,
		},
		map[string]interface{}{
			"value": v,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
