package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

func TestConfigured(t *testing.T) {
	if New("").Configured() {
		t.Fatal("empty key reported configured")
	}
	if !New("key").Configured() {
		t.Fatal("key reported unconfigured")
	}
}

func TestVerify(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/user" {
			t.Fatalf("path=%q", r.URL.Path)
		}
		gotKey = r.Header.Get("xi-api-key")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("test-key").WithBaseURL(srv.URL)
	if err := c.Verify(context.Background()); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if gotKey != "test-key" {
		t.Fatalf("xi-api-key=%q", gotKey)
	}
}

func TestVerifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if err := New("bad-key").WithBaseURL(srv.URL).Verify(context.Background()); err == nil {
		t.Fatal("want error for rejected credential")
	}
}

func TestCreateConversation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/convai/conversations" {
			t.Fatalf("method=%q path=%q", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["agent_id"] != "agent-1" || body["voice_id"] != "voice-1" {
			t.Fatalf("body=%v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"conversation_id": "remote_42"})
	}))
	defer srv.Close()

	id, err := New("key").WithBaseURL(srv.URL).CreateConversation(context.Background(), "agent-1", "voice-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "remote_42" {
		t.Fatalf("id=%q", id)
	}
}

func TestCreateConversationMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	if _, err := New("key").WithBaseURL(srv.URL).CreateConversation(context.Background(), "a", "v"); err == nil {
		t.Fatal("want error for missing conversation_id")
	}
}

func TestTranscriptRoleMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"transcript": [
			{"role": "user", "message": "Hello"},
			{"role": "agent", "message": "Hi, let's practice."},
			{"speaker": "agent", "text": "Ready when you are."},
			{"role": "user", "message": "   "}
		]}`))
	}))
	defer srv.Close()

	turns, err := New("key").WithBaseURL(srv.URL).Transcript(context.Background(), "remote_42")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("turns=%d", len(turns))
	}
	if turns[0].Role != types.RoleUser || turns[1].Role != types.RoleAssistant || turns[2].Role != types.RoleAssistant {
		t.Fatalf("roles=%v %v %v", turns[0].Role, turns[1].Role, turns[2].Role)
	}
	if turns[2].Content != "Ready when you are." {
		t.Fatalf("content=%q", turns[2].Content)
	}
}

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/voice-1" {
			t.Fatalf("path=%q", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["model_id"] != "eleven_multilingual_v2" {
			t.Fatalf("model_id=%v", body["model_id"])
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3bytes"))
	}))
	defer srv.Close()

	synth, err := New("key").WithBaseURL(srv.URL).Synthesize(context.Background(), "Guten Tag", "voice-1")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(synth.Audio) != "mp3bytes" || synth.ContentType != "audio/mpeg" {
		t.Fatalf("synthesis=%+v", synth)
	}
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if _, err := New("key").WithBaseURL(srv.URL).Synthesize(context.Background(), "text", "voice-1"); err == nil {
		t.Fatal("want error for empty audio")
	}
}

func TestSynthesizeValidatesInput(t *testing.T) {
	c := New("key")
	if _, err := c.Synthesize(context.Background(), "", "voice-1"); err == nil {
		t.Fatal("want error for empty text")
	}
	if _, err := c.Synthesize(context.Background(), "text", ""); err == nil {
		t.Fatal("want error for empty voice id")
	}
}

func TestRelaySlowDialDoesNotBlockOtherConversations(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("conversation_id") == "conv_slow" {
			time.Sleep(1 * time.Second)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := New("key").WithWSBaseURL("ws" + strings.TrimPrefix(srv.URL, "http"))
	defer c.Close()

	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		_ = c.Relay(context.Background(), "conv_slow", []byte("a"), "audio/webm")
	}()
	// Let the slow handshake start first.
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	if err := c.Relay(context.Background(), "conv_fast", []byte("b"), "audio/webm"); err != nil {
		t.Fatalf("relay: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("relay waited %v behind another conversation's dial", elapsed)
	}
	<-slowDone
}
