package flavor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/hexclash/hexclash-server-go/internal/game"
)

var _ game.FlavorText = (*Service)(nil)

func modelServer(t *testing.T, handler func(w http.ResponseWriter, prompt string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		handler(w, req.Contents[0].Parts[0].Text)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func reply(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + string(mustJSON(text)) + `}]}}]}`))
}

func mustJSON(v string) []byte {
	b, _ := json.Marshal(v)
	return b
}

func testConfig(endpoint string) Config {
	return Config{
		Enabled:  true,
		Endpoint: endpoint,
		Model:    "test-model",
		APIKey:   "secret",
		Timeout:  time.Second,
	}
}

func TestBattleIntro(t *testing.T) {
	var prompt string
	srv := modelServer(t, func(w http.ResponseWriter, p string) {
		prompt = p
		reply(w, "  Iron Man meets Thanos!  ")
	})
	s := NewService(zaptest.NewLogger(t), testConfig(srv.URL), nil)

	got := s.BattleIntro(context.Background(), "Tony", "Thanos")
	assert.Equal(t, "Iron Man meets Thanos!", got)
	assert.Contains(t, prompt, "Tony faces Thanos")
}

func TestTacticalCommentUsesCustomPrompt(t *testing.T) {
	var prompt string
	srv := modelServer(t, func(w http.ResponseWriter, p string) {
		prompt = p
		reply(w, "Smash!")
	})
	cfg := testConfig(srv.URL)
	cfg.CommentPrompt = "comment on {{card}} for {{player}}"
	s := NewService(zaptest.NewLogger(t), cfg, nil)

	assert.Equal(t, "Smash!", s.TacticalComment(context.Background(), "Bruce", "Hulk"))
	assert.Equal(t, "comment on Hulk for Bruce", prompt)
}

func TestFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, prompt string)
	}{
		{"server error", func(w http.ResponseWriter, _ string) { w.WriteHeader(http.StatusTooManyRequests) }},
		{"garbage body", func(w http.ResponseWriter, _ string) { _, _ = w.Write([]byte("not json")) }},
		{"no candidates", func(w http.ResponseWriter, _ string) { _, _ = w.Write([]byte(`{"candidates":[]}`)) }},
		{"blank text", func(w http.ResponseWriter, _ string) { reply(w, "   ") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := modelServer(t, tt.handler)
			s := NewService(zaptest.NewLogger(t), testConfig(srv.URL), nil)

			assert.Equal(t, DefaultFallbackIntro, s.BattleIntro(context.Background(), "a", "b"))
			assert.Equal(t, "Hulk is ready for battle!", s.TacticalComment(context.Background(), "a", "Hulk"))
		})
	}
}

func TestTimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := modelServer(t, func(w http.ResponseWriter, _ string) {
		<-release
		reply(w, "too late")
	})
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	s := NewService(zaptest.NewLogger(t), cfg, nil)

	assert.Equal(t, DefaultFallbackIntro, s.BattleIntro(context.Background(), "a", "b"))
}

func TestDisabledNeverCalls(t *testing.T) {
	var calls int32
	srv := modelServer(t, func(w http.ResponseWriter, _ string) {
		atomic.AddInt32(&calls, 1)
		reply(w, "hello")
	})

	cfg := testConfig(srv.URL)
	cfg.Enabled = false
	s := NewService(nil, cfg, nil)
	assert.Equal(t, DefaultFallbackIntro, s.BattleIntro(context.Background(), "a", "b"))

	cfg = testConfig(srv.URL)
	cfg.APIKey = ""
	cfg.FallbackIntro = "{{player}} vs {{opponent}}"
	s = NewService(nil, cfg, nil)
	assert.Equal(t, "a vs b", s.BattleIntro(context.Background(), "a", "b"))

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestConcurrentIdenticalPromptsShareOneCall(t *testing.T) {
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	srv := modelServer(t, func(w http.ResponseWriter, _ string) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		reply(w, "shared")
	})
	s := NewService(zaptest.NewLogger(t), testConfig(srv.URL), nil)

	const callers = 5
	results := make([]string, callers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = s.TacticalComment(context.Background(), "p", "Thor")
	}()
	<-started
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.TacticalComment(context.Background(), "p", "Thor")
		}(i)
	}
	// Give the followers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFill(t *testing.T) {
	assert.Equal(t, "Thor strikes Loki", fill("{{a}} strikes {{b}}", map[string]string{"a": "Thor", "b": "Loki"}))
	assert.Equal(t, "{{unknown}}", fill("{{unknown}}", nil))
}
