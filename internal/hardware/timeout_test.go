package hardware

import (
	"context"
	"errors"
	"testing"
	"time"
)

// slowIO blocks every call for a configurable duration.
type slowIO struct {
	delay time.Duration
	value bool
	err   error

	writes chan bool
}

func (s *slowIO) Kind() string { return "slow" }
func (s *slowIO) Close() error { return nil }

func (s *slowIO) SetupPin(pin int, dir PinDirection, pull Pull, opts PinOptions) error {
	return nil
}

func (s *slowIO) ReadPin(pin int) (bool, error) {
	time.Sleep(s.delay)
	return s.value, s.err
}

func (s *slowIO) WritePin(pin int, value bool) error {
	time.Sleep(s.delay)
	if s.writes != nil {
		s.writes <- value
	}
	return s.err
}

func (s *slowIO) ReadChannel(channel int) (float64, error) {
	time.Sleep(s.delay)
	return 42.5, s.err
}

func (s *slowIO) ReadUnit() ([]byte, error) {
	time.Sleep(s.delay)
	return []byte("unit"), s.err
}

func (s *slowIO) WriteUnit(data []byte) error {
	time.Sleep(s.delay)
	return s.err
}

func TestReadPinTimeoutSuccess(t *testing.T) {
	io := &slowIO{value: true}

	got, err := ReadPinTimeout(context.Background(), io, 7, time.Second)
	if err != nil {
		t.Fatalf("ReadPinTimeout() error = %v", err)
	}
	if !got {
		t.Error("ReadPinTimeout() = false, want true")
	}
}

func TestReadPinTimeoutExpires(t *testing.T) {
	io := &slowIO{delay: 200 * time.Millisecond}

	_, err := ReadPinTimeout(context.Background(), io, 7, 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("ReadPinTimeout() error = %v, want ErrTimeout", err)
	}
}

func TestWritePinTimeoutExpires(t *testing.T) {
	io := &slowIO{delay: 200 * time.Millisecond}

	err := WritePinTimeout(context.Background(), io, 7, true, 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WritePinTimeout() error = %v, want ErrTimeout", err)
	}
}

func TestReadChannelTimeoutSuccess(t *testing.T) {
	io := &slowIO{}

	got, err := ReadChannelTimeout(context.Background(), io, 0, time.Second)
	if err != nil {
		t.Fatalf("ReadChannelTimeout() error = %v", err)
	}
	if got != 42.5 {
		t.Errorf("ReadChannelTimeout() = %v, want 42.5", got)
	}
}

func TestWriteUnitTimeoutExpires(t *testing.T) {
	io := &slowIO{delay: 200 * time.Millisecond}

	err := WriteUnitTimeout(context.Background(), io, []byte("x"), 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WriteUnitTimeout() error = %v, want ErrTimeout", err)
	}
}

func TestTimeoutHonoursContext(t *testing.T) {
	io := &slowIO{delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadPinTimeout(ctx, io, 7, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadPinTimeout() error = %v, want context.Canceled", err)
	}
}

func TestAbandonedCallDoesNotBlockNextOne(t *testing.T) {
	io := &slowIO{delay: 100 * time.Millisecond}

	start := time.Now()
	_, _ = ReadPinTimeout(context.Background(), io, 7, 10*time.Millisecond)
	_, _ = ReadPinTimeout(context.Background(), io, 7, 10*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 80*time.Millisecond {
		t.Errorf("two timed-out reads took %v, abandoned call appears to block", elapsed)
	}
}
