package codegen

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns canned output and records every call.
type fakeProvider struct {
	name string
	out  string
	err  error

	mu    sync.Mutex
	calls int
	users []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, _, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.users = append(f.users, user)
	return f.out, f.err
}

const goodProject = `{"stack":{"primary":"go","languages":["go"]},"files":[{"path":"main.go","code":"package main"}]}`

func TestClientExtract_FirstProviderWins(t *testing.T) {
	a := &fakeProvider{name: "a", out: goodProject}
	b := &fakeProvider{name: "b", out: goodProject}
	c := NewClientWithProviders(Config{}, a, b)

	got, source := c.Extract(context.Background(), "Go tutorial", "some transcript")
	assert.Equal(t, "a", source)
	assert.Equal(t, "go", got.Stack.Primary)
	require.NotNil(t, got.Confidence)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
	assert.Contains(t, a.users[0], "Video Title: Go tutorial")
}

func TestClientExtract_SkipsUnusableOutput(t *testing.T) {
	broken := &fakeProvider{name: "broken", err: errors.New("connection refused")}
	prose := &fakeProvider{name: "prose", out: "Sorry, I can't do that."}
	empty := &fakeProvider{name: "empty", out: "   "}
	good := &fakeProvider{name: "good", out: goodProject}
	c := NewClientWithProviders(Config{}, broken, prose, empty, good)

	_, source := c.Extract(context.Background(), "Go tutorial", "")
	assert.Equal(t, "good", source)
	for _, p := range []*fakeProvider{broken, prose, empty, good} {
		assert.Equal(t, 1, p.calls, p.name)
	}
}

func TestClientExtract_FallbackWhenAllFail(t *testing.T) {
	bad := &fakeProvider{name: "bad", err: errors.New("boom")}
	c := NewClientWithProviders(Config{}, bad)

	got, source := c.Extract(context.Background(), "Build a REST API with Spring Boot", "")
	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, "java", got.Stack.Primary)
	assert.InDelta(t, 0.3, got.Confidence.Files, 1e-9)
}

func TestClientExtract_NoProviders(t *testing.T) {
	c := NewClientWithProviders(Config{})
	got, source := c.Extract(context.Background(), "Python Flask tutorial", "")
	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, "python", got.Stack.Primary)
}

func TestClientGenerate(t *testing.T) {
	_, _, err := NewClientWithProviders(Config{}).Generate(context.Background(), "t", "")
	assert.ErrorIs(t, err, ErrNoProviders)

	bad := &fakeProvider{name: "bad", err: errors.New("boom")}
	good := &fakeProvider{name: "good", out: "raw text"}
	raw, source, err := NewClientWithProviders(Config{}, bad, good).Generate(context.Background(), "t", "")
	require.NoError(t, err)
	assert.Equal(t, "raw text", raw)
	assert.Equal(t, "good", source)

	_, _, err = NewClientWithProviders(Config{}, bad).Generate(context.Background(), "t", "")
	assert.ErrorContains(t, err, "boom")
}

func TestProviderOrder(t *testing.T) {
	assert.Equal(t, []string{SourceOpenAI, SourceGemini, SourceHTTP, SourceOllama}, providerOrder(""))
	assert.Equal(t, []string{SourceOllama, SourceOpenAI, SourceGemini, SourceHTTP}, providerOrder("Ollama"))
	assert.Equal(t, []string{SourceGemini, SourceOpenAI, SourceHTTP, SourceOllama}, providerOrder("gemini"))
	assert.Equal(t, defaultOrder, providerOrder("unknown"))
}

func TestNewClient_SkipsUnconfigured(t *testing.T) {
	c, err := NewClient(context.Background(), Config{
		Preferred: SourceHTTP,
		HTTP:      HTTPConfig{URL: "http://127.0.0.1:1/v1/chat/completions", Models: []string{"m"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{SourceHTTP}, c.Providers())
}

func TestTryModels(t *testing.T) {
	var tried []string
	text, err := tryModels(context.Background(), "p", []string{"a", "b", "c"}, func(_ context.Context, model string) (string, error) {
		tried = append(tried, model)
		if model == "a" {
			return "", ErrQuotaExceeded
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.Equal(t, []string{"a", "b"}, tried)

	tried = nil
	_, err = tryModels(context.Background(), "p", []string{"a", "b"}, func(_ context.Context, model string) (string, error) {
		tried = append(tried, model)
		return "", errors.New("bad request")
	})
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, tried)

	_, err = tryModels(context.Background(), "p", nil, nil)
	assert.Error(t, err)
}

func TestWithBreaker_Opens(t *testing.T) {
	bad := &fakeProvider{name: "bad", err: errors.New("boom")}
	p := WithBreaker(bad)
	assert.Equal(t, "bad", p.Name())

	for i := 0; i < 5; i++ {
		_, err := p.Generate(context.Background(), "s", "u")
		require.Error(t, err)
	}
	assert.Equal(t, 3, bad.calls)
}
