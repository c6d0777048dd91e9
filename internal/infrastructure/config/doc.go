// Package config provides configuration loading for gpio2mqtt.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by GPIO2MQTT_* environment variables. The loaded
// Config is validated structurally before it is handed to the rest of the
// process; a configuration that fails validation terminates startup.
//
// The module lists (gpio_modules, digital_inputs, digital_outputs,
// sensor_inputs, streams) are ordered: the order in the file is the order
// in which modules are registered and started, which keeps startup logs
// deterministic.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//
// After Load returns, the Config is never mutated. Changing configuration
// requires a process restart.
package config
