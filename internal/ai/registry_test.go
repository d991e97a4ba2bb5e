// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
)

// mockProvider is a test double implementing the Provider interface.
// It records calls and returns configurable responses. When responses is
// set, each call consumes the next entry and errs the matching error.
type mockProvider struct {
	name      string
	response  string
	err       error
	responses []string
	errs      []error
	usage     Usage
	callCount int
	lastReq   Request
	mu        sync.Mutex
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.callCount
	m.callCount++
	m.lastReq = req

	content, err := m.response, m.err
	if i < len(m.responses) {
		content = m.responses[i]
	}
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return nil, err
	}
	return &Response{Content: content, Provider: m.name, Model: req.Model, Usage: m.usage}, nil
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// ---------- Registry.Generate ----------

func TestRegistryGenerate(t *testing.T) {
	t.Run("delegates to active provider", func(t *testing.T) {
		mock := &mockProvider{name: "test", response: "Hello from mock"}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		resp, err := reg.Generate(context.Background(), Request{System: "system", User: "user"})
		if err != nil {
			t.Fatalf("Generate: unexpected error: %v", err)
		}
		if resp.Content != "Hello from mock" {
			t.Errorf("result: got %q, want %q", resp.Content, "Hello from mock")
		}

		mock.mu.Lock()
		defer mock.mu.Unlock()
		if mock.callCount != 1 {
			t.Errorf("callCount: got %d, want 1", mock.callCount)
		}
		if mock.lastReq.System != "system" {
			t.Errorf("System: got %q, want %q", mock.lastReq.System, "system")
		}
		if mock.lastReq.User != "user" {
			t.Errorf("User: got %q, want %q", mock.lastReq.User, "user")
		}
	})

	t.Run("propagates provider error", func(t *testing.T) {
		mock := &mockProvider{name: "test", err: fmt.Errorf("api failure")}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		_, err := reg.Generate(context.Background(), Request{System: "system", User: "user"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if err.Error() != "api failure" {
			t.Errorf("error: got %q, want %q", err.Error(), "api failure")
		}
	})
}

func TestRegistryGenerateNoProvider(t *testing.T) {
	t.Run("error when no provider is active", func(t *testing.T) {
		reg := &Registry{
			providers: map[string]Provider{},
			active:    "nonexistent",
		}

		if _, err := reg.Generate(context.Background(), Request{}); err == nil {
			t.Fatal("expected error when no provider is active, got nil")
		}
	})

	t.Run("error when active name does not match any registered provider", func(t *testing.T) {
		reg := &Registry{
			providers: map[string]Provider{"openai": &mockProvider{name: "openai", response: "hi"}},
			active:    "gemini",
		}

		if _, err := reg.Generate(context.Background(), Request{}); err == nil {
			t.Fatal("expected error for mismatched active provider, got nil")
		}
	})
}

// ---------- Registry.SetActive ----------

func TestRegistrySetActive(t *testing.T) {
	mockA := &mockProvider{name: "a", response: "from a"}
	mockB := &mockProvider{name: "b", response: "from b"}

	reg := &Registry{
		providers: map[string]Provider{"a": mockA, "b": mockB},
		active:    "a",
	}

	if err := reg.SetActive("b"); err != nil {
		t.Fatalf("SetActive(b): unexpected error: %v", err)
	}
	if reg.ActiveName() != "b" {
		t.Errorf("ActiveName: got %q, want %q", reg.ActiveName(), "b")
	}
	if reg.Name() != "b" {
		t.Errorf("Name: got %q, want %q", reg.Name(), "b")
	}

	resp, err := reg.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if resp.Content != "from b" {
		t.Errorf("result: got %q, want %q", resp.Content, "from b")
	}
}

func TestRegistrySetActiveInvalid(t *testing.T) {
	reg := &Registry{
		providers: map[string]Provider{"openai": &mockProvider{name: "openai"}},
		active:    "openai",
	}

	if err := reg.SetActive("claude"); err == nil {
		t.Fatal("expected error for unavailable provider, got nil")
	}
	if reg.ActiveName() != "openai" {
		t.Errorf("active should be unchanged: got %q", reg.ActiveName())
	}
}

// ---------- Registry.Available / HasProvider / Register ----------

func TestRegistryAvailable(t *testing.T) {
	reg := &Registry{
		providers: map[string]Provider{
			"openai":  &mockProvider{name: "openai"},
			"claude":  &mockProvider{name: "claude"},
			"mistral": &mockProvider{name: "mistral"},
		},
	}

	got := reg.Available()
	want := []string{"claude", "mistral", "openai"}
	if !sort.StringsAreSorted(got) {
		t.Errorf("Available not sorted: %v", got)
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Available: got %v, want %v", got, want)
	}
}

func TestRegistryHasProvider(t *testing.T) {
	reg := &Registry{providers: map[string]Provider{"openai": &mockProvider{name: "openai"}}}

	tests := []struct {
		name string
		want bool
	}{
		{"openai", true},
		{"gemini", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.HasProvider(tt.name); got != tt.want {
				t.Errorf("HasProvider(%q): got %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry("custom", nil)
	reg.Register("custom", &mockProvider{name: "custom", response: "ok"})

	resp, err := reg.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("result: got %q, want %q", resp.Content, "ok")
	}
}

// ---------- Concurrency ----------

func TestRegistryConcurrency(t *testing.T) {
	mockA := &mockProvider{name: "a", response: "from a"}
	mockB := &mockProvider{name: "b", response: "from b"}

	reg := &Registry{
		providers: map[string]Provider{"a": mockA, "b": mockB},
		active:    "a",
	}

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			name := "a"
			if i%2 == 0 {
				name = "b"
			}
			reg.SetActive(name)
		}(i)
	}

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			resp, err := reg.Generate(context.Background(), Request{})
			if err != nil {
				t.Errorf("Generate error during concurrency: %v", err)
				return
			}
			if resp.Content != "from a" && resp.Content != "from b" {
				t.Errorf("unexpected result: %q", resp.Content)
			}
		}()
	}

	wg.Wait()
}

// ---------- NewRegistry ----------

func TestNewRegistryProviderNames(t *testing.T) {
	for _, name := range []string{"openai", "gemini", "claude", "mistral"} {
		t.Run(name, func(t *testing.T) {
			reg := NewRegistry(name, map[string]ProviderConfig{
				name: {APIKey: "test-key", Model: "test-model"},
			})

			p, err := reg.Active()
			if err != nil {
				t.Fatalf("Active: unexpected error: %v", err)
			}
			if p.Name() != name {
				t.Errorf("Name: got %q, want %q", p.Name(), name)
			}
		})
	}
}

func TestNewRegistrySkipsEmptyAPIKey(t *testing.T) {
	reg := NewRegistry("openai", map[string]ProviderConfig{
		"openai":  {APIKey: "", Model: "gpt-4o"},
		"gemini":  {APIKey: "valid-key", Model: "gemini-pro"},
		"claude":  {APIKey: "", Model: "claude-sonnet"},
		"mistral": {APIKey: "", Model: "mistral-large"},
	})

	if reg.HasProvider("openai") {
		t.Error("openai should be skipped (no API key)")
	}
	if !reg.HasProvider("gemini") {
		t.Error("gemini should be available (has API key)")
	}
	if got := len(reg.Available()); got != 1 {
		t.Errorf("len(Available): got %d, want 1", got)
	}
	if reg.moderator != nil {
		t.Error("no moderator expected without openai or mistral keys")
	}
}

func TestNewRegistryIgnoresUnknownProvider(t *testing.T) {
	reg := NewRegistry("unknown", map[string]ProviderConfig{
		"unknown": {APIKey: "key", Model: "model"},
	})

	if reg.HasProvider("unknown") {
		t.Error("unknown provider should not be registered")
	}
	if _, err := reg.Active(); err == nil {
		t.Error("Active should fail for an unregistered provider")
	}
}

func TestNewRegistryModeratorSelection(t *testing.T) {
	tests := []struct {
		name    string
		configs map[string]ProviderConfig
		check   func(Moderator) bool
	}{
		{
			name:    "openai only",
			configs: map[string]ProviderConfig{"openai": {APIKey: "k"}},
			check:   func(m Moderator) bool { _, ok := m.(*openAIModerator); return ok },
		},
		{
			name:    "mistral only",
			configs: map[string]ProviderConfig{"mistral": {APIKey: "k"}},
			check:   func(m Moderator) bool { _, ok := m.(*mistralModerator); return ok },
		},
		{
			name: "both",
			configs: map[string]ProviderConfig{
				"openai":  {APIKey: "k"},
				"mistral": {APIKey: "k"},
			},
			check: func(m Moderator) bool { _, ok := m.(*fallbackModerator); return ok },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry("openai", tt.configs)
			if !tt.check(reg.moderator) {
				t.Errorf("unexpected moderator type %T", reg.moderator)
			}
		})
	}
}

func TestRegistryCheckPromptWithoutModerator(t *testing.T) {
	reg := NewRegistry("gemini", map[string]ProviderConfig{"gemini": {APIKey: "k"}})

	res, err := reg.CheckPrompt(context.Background(), "anything")
	if err != nil {
		t.Fatalf("CheckPrompt: unexpected error: %v", err)
	}
	if !res.Safe {
		t.Error("expected Safe=true without a moderator")
	}
}
