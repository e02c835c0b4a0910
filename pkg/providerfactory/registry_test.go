package providerfactory

import (
	"errors"
	"sync"
	"testing"

	mock "caseflow-hq/polaris/internal/providers"
	"caseflow-hq/polaris/pkg/providers"
)

// scriptedCreate returns a CreateFunc that serves canned providers and
// counts constructions per kind.
func scriptedCreate(t *testing.T, fail map[string]error) (CreateFunc, map[string]int) {
	t.Helper()
	var mu sync.Mutex
	counts := make(map[string]int)

	create := func(kind string, config providers.Config) (providers.Provider, error) {
		mu.Lock()
		counts[kind]++
		mu.Unlock()
		if err, ok := fail[kind]; ok && err != nil {
			return nil, err
		}
		return mock.NewMockProvider(kind, "scripted reply"), nil
	}

	return create, counts
}

func TestRegistryGetOrCreateCaches(t *testing.T) {
	create, counts := scriptedCreate(t, nil)
	r := NewRegistry(RegistryOptions{Create: create})
	defer r.Close()

	first, err := r.GetOrCreate("flowise", providers.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.GetOrCreate("Flowise", providers.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected the same cached instance for both lookups")
	}
	if counts["flowise"] != 1 {
		t.Errorf("expected exactly 1 construction, got %d", counts["flowise"])
	}
}

func TestRegistryGetOrCreateConcurrent(t *testing.T) {
	create, counts := scriptedCreate(t, nil)
	r := NewRegistry(RegistryOptions{Create: create})
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.GetOrCreate("openrouter", providers.Config{}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if counts["openrouter"] != 1 {
		t.Errorf("expected a single construction under contention, got %d", counts["openrouter"])
	}
}

func TestRegistryCreateFailurePropagates(t *testing.T) {
	wantErr := &providers.ConfigurationError{Kind: "azure", Field: "api_key", Message: "missing"}
	create, _ := scriptedCreate(t, map[string]error{"azure": wantErr})
	r := NewRegistry(RegistryOptions{Create: create})
	defer r.Close()

	_, err := r.GetOrCreate("azure", providers.Config{})
	var cfgErr *providers.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}

	if _, ok := r.Get("azure"); ok {
		t.Error("failed construction must not be cached")
	}
}

func TestRegistrySwitchToReplacesInstance(t *testing.T) {
	create, counts := scriptedCreate(t, nil)
	r := NewRegistry(RegistryOptions{Create: create})
	defer r.Close()

	first, _ := r.GetOrCreate("flowise", providers.Config{})
	old := first.(*mock.MockProvider)

	replacement, err := r.SwitchTo("flowise", providers.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if replacement == first {
		t.Error("expected a fresh instance after switch")
	}
	if !old.Closed() {
		t.Error("expected the replaced instance to be closed")
	}
	if counts["flowise"] != 2 {
		t.Errorf("expected 2 constructions, got %d", counts["flowise"])
	}

	cached, ok := r.Get("flowise")
	if !ok || cached != replacement {
		t.Error("expected the replacement to be cached")
	}
}

func TestRegistrySwitchToFailureKeepsOld(t *testing.T) {
	failNext := false
	create := func(kind string, config providers.Config) (providers.Provider, error) {
		if failNext {
			return nil, &providers.ConfigurationError{Kind: kind, Field: "endpoint", Message: "bad"}
		}
		return mock.NewMockProvider(kind, "ok"), nil
	}
	r := NewRegistry(RegistryOptions{Create: create})
	defer r.Close()

	first, _ := r.GetOrCreate("openrouter", providers.Config{})

	failNext = true
	if _, err := r.SwitchTo("openrouter", providers.Config{}); err == nil {
		t.Fatal("expected switch error, got nil")
	}

	cached, ok := r.Get("openrouter")
	if !ok || cached != first {
		t.Error("failed switch must leave the previous instance cached")
	}
	if first.(*mock.MockProvider).Closed() {
		t.Error("failed switch must not close the previous instance")
	}
}

func TestRegistryDefaultKind(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	defer r.Close()
	if r.DefaultKind() != providers.KindFlowise {
		t.Errorf("expected default kind %q, got %q", providers.KindFlowise, r.DefaultKind())
	}

	r2 := NewRegistry(RegistryOptions{DefaultKind: "AzureOpenAI"})
	defer r2.Close()
	if r2.DefaultKind() != providers.KindAzureOpenAI {
		t.Errorf("expected normalized default kind %q, got %q", providers.KindAzureOpenAI, r2.DefaultKind())
	}
}

func TestRegistryStatuses(t *testing.T) {
	create, _ := scriptedCreate(t, nil)
	r := NewRegistry(RegistryOptions{Create: create})
	defer r.Close()

	p, _ := r.GetOrCreate("openrouter", providers.Config{})
	r.GetOrCreate("flowise", providers.Config{})
	p.MarkUnhealthy(errors.New("upstream down"))

	statuses := r.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Kind != "flowise" || statuses[1].Kind != "openrouter" {
		t.Errorf("expected sorted kinds, got %v", []string{statuses[0].Kind, statuses[1].Kind})
	}
	if statuses[1].Healthy {
		t.Error("expected openrouter marked unhealthy")
	}
	if statuses[1].LastError != "upstream down" {
		t.Errorf("expected last error recorded, got %q", statuses[1].LastError)
	}
}

func TestRegistryReset(t *testing.T) {
	create, counts := scriptedCreate(t, nil)
	r := NewRegistry(RegistryOptions{Create: create})
	defer r.Close()

	first, _ := r.GetOrCreate("flowise", providers.Config{})
	r.Reset()

	if first.(*mock.MockProvider).Closed() != true {
		t.Error("expected cached instance closed on reset")
	}
	if len(r.Kinds()) != 0 {
		t.Errorf("expected empty registry after reset, got %v", r.Kinds())
	}

	second, _ := r.GetOrCreate("flowise", providers.Config{})
	if second == first {
		t.Error("expected a fresh instance after reset")
	}
	if counts["flowise"] != 2 {
		t.Errorf("expected rebuild after reset, got %d constructions", counts["flowise"])
	}
}
