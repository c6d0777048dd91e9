package engine

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/module"
)

// sensorScheduler samples one sensor on a fixed interval. The ticker keeps
// the cadence anchored: a slow or failed read delays nothing and the next
// sample still lands on schedule.
type sensorScheduler struct {
	engine *Engine
	sensor module.Sensor
	topic  string
}

func (e *Engine) newSensorScheduler(s module.Sensor) *sensorScheduler {
	return &sensorScheduler{
		engine: e,
		sensor: s,
		topic:  e.broker.Topics().Sensor(s.Config.Name),
	}
}

func (s *sensorScheduler) run(ctx context.Context) {
	log := s.engine.logger.With("sensor", s.sensor.Config.Name)

	// First sample immediately; the ticker covers the rest.
	s.sample(ctx, log)

	ticker := time.NewTicker(s.sensor.Config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sample(ctx, log)
		}
	}
}

// sample reads the channel once. A failed read is logged and skipped; it
// produces no publish and does not shift the schedule.
func (s *sensorScheduler) sample(ctx context.Context, log logger) {
	value, err := hardware.ReadChannelTimeout(ctx, s.sensor.Reader, s.sensor.Config.Channel, s.engine.cfg.HardwareTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn("sensor read failed", "error", err)
		return
	}

	rounded := roundTo(value, s.sensor.Config.Digits)
	payload := strconv.FormatFloat(rounded, 'f', s.sensor.Config.Digits, 64)

	s.engine.requestPublish(s.topic, []byte(payload), s.sensor.Config.Retain)
	if s.engine.telem != nil {
		s.engine.telem.WriteSensorReading(s.sensor.Config.Name, rounded)
	}
}

// roundTo rounds to the given number of decimal digits.
func roundTo(value float64, digits int) float64 {
	scale := math.Pow10(digits)
	return math.Round(value*scale) / scale
}
