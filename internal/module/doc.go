// Package module binds configured logical modules (inputs, outputs,
// sensors, streams) to their opened hardware backends.
//
// Build is the single entry point: it opens every configured backend
// through the hardware registry, type-asserts each module's required
// capability, configures pins, and verifies that the resulting topic map
// is collision-free. Everything that can fail because of a bad
// configuration fails here, before the engine starts — a running engine
// never discovers an unbound module.
//
// The Registry preserves configuration order within each category, so
// startup logs and initial publishes follow the order the operator wrote.
package module
