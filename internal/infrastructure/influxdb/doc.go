// Package influxdb provides the optional telemetry sink for gpio2mqtt.
//
// When enabled, every sensor reading and every confirmed pin transition is
// mirrored to InfluxDB alongside its broker publish. Writes are batched and
// asynchronous; a slow or absent InfluxDB never blocks the engine, and
// write errors surface only through the SetOnError callback.
//
// Degraded modules and drop counters are NOT reported here — those are
// operator concerns and stay in the logs.
package influxdb
