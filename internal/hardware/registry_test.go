package hardware

import (
	"errors"
	"testing"

	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
)

// stubModule is a minimal backend for registry tests.
type stubModule struct{}

func (stubModule) Kind() string { return "stub" }
func (stubModule) Close() error { return nil }

func TestRegisterAndOpen(t *testing.T) {
	Register("stub", func(cfg config.GPIOModuleConfig) (Module, error) {
		return stubModule{}, nil
	})

	mod, err := Open(config.GPIOModuleConfig{Name: "dev0", Type: "stub"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if mod.Kind() != "stub" {
		t.Errorf("Kind() = %q, want %q", mod.Kind(), "stub")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(config.GPIOModuleConfig{Name: "dev0", Type: "no-such-chip"})
	if err == nil {
		t.Fatal("Open() expected error for unknown backend")
	}
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open() error = %v, want ErrUnknownBackend", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() did not panic on duplicate kind")
		}
	}()

	Register("dup-stub", func(cfg config.GPIOModuleConfig) (Module, error) {
		return stubModule{}, nil
	})
	Register("dup-stub", func(cfg config.GPIOModuleConfig) (Module, error) {
		return stubModule{}, nil
	})
}

func TestKindsSorted(t *testing.T) {
	Register("zz-stub", func(cfg config.GPIOModuleConfig) (Module, error) {
		return stubModule{}, nil
	})
	Register("aa-stub", func(cfg config.GPIOModuleConfig) (Module, error) {
		return stubModule{}, nil
	})

	kinds := Kinds()
	for i := 1; i < len(kinds); i++ {
		if kinds[i-1] >= kinds[i] {
			t.Fatalf("Kinds() not sorted: %v", kinds)
		}
	}
}
