package hardware

import (
	"context"
	"fmt"
	"time"
)

// The guarded helpers below bound a blocking driver call with a timeout.
// Hardware calls cannot be cancelled mid-flight, so on expiry the call is
// abandoned: the goroutine running it finishes on its own and its result is
// discarded. The per-operation timeout keeps a wedged device from stalling
// its worker forever.

type pinResult struct {
	value bool
	err   error
}

type analogResult struct {
	value float64
	err   error
}

type unitResult struct {
	data []byte
	err  error
}

// ReadPinTimeout reads a digital pin, failing with ErrTimeout if the driver
// does not answer within the given duration.
func ReadPinTimeout(ctx context.Context, d DigitalIO, pin int, timeout time.Duration) (bool, error) {
	ch := make(chan pinResult, 1)
	go func() {
		v, err := d.ReadPin(pin)
		ch <- pinResult{value: v, err: err}
	}()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-time.After(timeout):
		return false, fmt.Errorf("%w: read pin %d after %v", ErrTimeout, pin, timeout)
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// WritePinTimeout writes a digital pin, failing with ErrTimeout if the
// driver does not answer within the given duration.
func WritePinTimeout(ctx context.Context, d DigitalIO, pin int, value bool, timeout time.Duration) error {
	ch := make(chan error, 1)
	go func() {
		ch <- d.WritePin(pin, value)
	}()

	select {
	case err := <-ch:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("%w: write pin %d after %v", ErrTimeout, pin, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReadChannelTimeout samples an analog channel, failing with ErrTimeout if
// the driver does not answer within the given duration.
func ReadChannelTimeout(ctx context.Context, r AnalogReader, channel int, timeout time.Duration) (float64, error) {
	ch := make(chan analogResult, 1)
	go func() {
		v, err := r.ReadChannel(channel)
		ch <- analogResult{value: v, err: err}
	}()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-time.After(timeout):
		return 0, fmt.Errorf("%w: read channel %d after %v", ErrTimeout, channel, timeout)
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// WriteUnitTimeout writes one stream unit, failing with ErrTimeout if the
// driver does not answer within the given duration.
func WriteUnitTimeout(ctx context.Context, s StreamReadWriter, data []byte, timeout time.Duration) error {
	ch := make(chan error, 1)
	go func() {
		ch <- s.WriteUnit(data)
	}()

	select {
	case err := <-ch:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("%w: stream write after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
