package module

import "errors"

// Domain-specific errors for module binding.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownModule is returned when a logical module references a
	// gpio_modules name that does not exist.
	ErrUnknownModule = errors.New("module: unknown gpio module reference")

	// ErrDuplicateName is returned when two modules in the same category
	// share a name.
	ErrDuplicateName = errors.New("module: duplicate module name")

	// ErrDuplicateTopic is returned when two modules would publish or
	// subscribe on the same topic.
	ErrDuplicateTopic = errors.New("module: topic collision")
)
