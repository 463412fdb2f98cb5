package tools

import (
	"errors"
	"testing"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&specTool{name: "alpha"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tool, ok := r.Get("alpha")
	if !ok {
		t.Fatal("expected to find registered tool")
	}
	if tool.Name() != "alpha" {
		t.Errorf("expected 'alpha', got %q", tool.Name())
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("expected miss for unregistered tool")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	r.Register(&specTool{name: "alpha"})
	err := r.Register(&specTool{name: "alpha"})
	if !errors.Is(err, ErrDuplicateTool) {
		t.Errorf("expected ErrDuplicateTool, got %v", err)
	}
}

func TestRegistryFreeze(t *testing.T) {
	r := NewRegistry()

	r.Register(&specTool{name: "alpha"})
	r.Freeze()

	if err := r.Register(&specTool{name: "beta"}); err == nil {
		t.Error("expected registration after Freeze to fail")
	}

	if _, ok := r.Get("alpha"); !ok {
		t.Error("expected reads to keep working after Freeze")
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.Register(&specTool{name: name})
	}

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected sorted names %v, got %v", want, names)
		}
	}

	list := r.List()
	if len(list) != 3 || list[0].Name() != "alpha" {
		t.Errorf("expected List in name order, got first %q", list[0].Name())
	}
}
