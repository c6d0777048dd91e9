// Package logging provides structured logging for gpio2mqtt.
//
// It wraps the standard library's log/slog with configuration-driven
// handler selection (JSON or text), level filtering, and default fields
// (service, version) attached to every record.
//
// Components receive a child logger carrying their component name:
//
//	engineLog := log.With("component", "engine")
//
// Use Default() during early startup, before configuration is available.
package logging
