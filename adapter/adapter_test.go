package adapter

import (
	"context"
	"testing"

	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/pkg/fault"
)

type stubAdapter struct{ name string }

func (s *stubAdapter) Name() string                    { return s.name }
func (s *stubAdapter) Close(ctx context.Context) error { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("beta", func(id config.Identity) (Adapter, error) {
		return &stubAdapter{name: "beta"}, nil
	})
	r.Register("alpha", func(id config.Identity) (Adapter, error) {
		return &stubAdapter{name: "alpha"}, nil
	})

	a, err := r.New("alpha", config.New())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Name() != "alpha" {
		t.Errorf("name = %q", a.Name())
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("names = %v, want sorted [alpha beta]", names)
	}
}

func TestRegistryUnknownSource(t *testing.T) {
	r := NewRegistry()
	if _, err := r.New("nope", config.New()); !fault.IsKind(err, fault.NotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestDefaultRegistryHasSources(t *testing.T) {
	// Adapter packages self-register in init; at minimum the registry type
	// itself must serve the default instance.
	if Default() == nil {
		t.Fatal("no default registry")
	}
}

func TestMemo(t *testing.T) {
	m := NewMemo()
	if _, ok := m.Get("k"); ok {
		t.Error("empty memo should miss")
	}
	m.Put("k", 42)
	if v, ok := m.Get("k"); !ok || v.(int) != 42 {
		t.Errorf("Get = %v, %v", v, ok)
	}
	m.Drop()
	if _, ok := m.Get("k"); ok {
		t.Error("dropped memo should miss")
	}
}
