// Package rpiomap refcounts the process-wide go-rpio register mapping.
//
// rpio.Open maps the GPIO registers once per process and rpio.Close unmaps
// them. Several backends (raspberrypi, mcp3008) share that mapping, so it
// is acquired and released through this counter and torn down only when
// the last holder lets go.
package rpiomap

import (
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

var (
	mu   sync.Mutex
	refs int

	// Swappable for tests, which run without /dev/gpiomem.
	openFn  = rpio.Open
	closeFn = rpio.Close
)

// Acquire maps the registers on first use and adds a reference.
func Acquire() error {
	mu.Lock()
	defer mu.Unlock()
	if refs == 0 {
		if err := openFn(); err != nil {
			return err
		}
	}
	refs++
	return nil
}

// Release drops a reference, unmapping the registers when none remain.
// Releasing with no holders is a no-op.
func Release() error {
	mu.Lock()
	defer mu.Unlock()
	if refs == 0 {
		return nil
	}
	refs--
	if refs == 0 {
		return closeFn()
	}
	return nil
}
