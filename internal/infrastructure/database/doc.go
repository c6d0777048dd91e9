// Package database provides the optional SQLite state store for gpio2mqtt.
//
// The store holds one row per persisted digital output: the last value the
// engine confirmed written to hardware. At startup, outputs configured with
// persist restore this value instead of their static initial setting, so a
// relay that was on before a power cut comes back on.
//
// The store is deliberately small. It is not a history database; the
// optional InfluxDB sink covers telemetry.
package database
