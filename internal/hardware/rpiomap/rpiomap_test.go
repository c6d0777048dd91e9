package rpiomap

import (
	"errors"
	"testing"
)

// stubRegisters replaces the register mapping calls and resets the counter,
// restoring everything when the test ends.
func stubRegisters(t *testing.T, openErr error) (opened, closed *int) {
	t.Helper()
	var o, c int
	origOpen, origClose := openFn, closeFn
	openFn = func() error {
		if openErr != nil {
			return openErr
		}
		o++
		return nil
	}
	closeFn = func() error {
		c++
		return nil
	}
	refs = 0
	t.Cleanup(func() {
		openFn, closeFn = origOpen, origClose
		refs = 0
	})
	return &o, &c
}

func TestMappingSharedAcrossHolders(t *testing.T) {
	opened, closed := stubRegisters(t, nil)

	if err := Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := Acquire(); err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if *opened != 1 {
		t.Errorf("registers mapped %d times, want 1", *opened)
	}

	if err := Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if *closed != 0 {
		t.Error("registers unmapped while a holder remains")
	}

	if err := Release(); err != nil {
		t.Fatalf("final Release() error = %v", err)
	}
	if *closed != 1 {
		t.Errorf("registers unmapped %d times, want 1", *closed)
	}
}

func TestReleaseWithoutHoldersIsNoOp(t *testing.T) {
	_, closed := stubRegisters(t, nil)

	if err := Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if *closed != 0 {
		t.Error("registers unmapped with no holders")
	}
}

func TestAcquireFailureAddsNoReference(t *testing.T) {
	opened, closed := stubRegisters(t, errors.New("no gpiomem"))

	if err := Acquire(); err == nil {
		t.Fatal("Acquire() expected error")
	}
	if err := Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if *opened != 0 || *closed != 0 {
		t.Errorf("mapped/unmapped = %d/%d after failed Acquire, want 0/0", *opened, *closed)
	}
}
