package main

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forgeapp/forge/internal/services"
	"github.com/gorilla/websocket"
)

func TestMainServer(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("SESSION_COOKIE_SECURE", "false")

	svcs, err := services.InitializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	// Start test server
	server := httptest.NewServer(setupRouter(svcs))
	defer server.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	t.Run("health endpoint", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/healthz")
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status code %d, got %d", http.StatusOK, resp.StatusCode)
		}
	})

	t.Run("models endpoint", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/v1/models")
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Models []struct {
				ID string `json:"id"`
			} `json:"models"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode models response: %v", err)
		}
		if len(body.Models) != 4 {
			t.Errorf("Expected 4 models, got %d", len(body.Models))
		}
	})

	t.Run("generate requires a prompt", func(t *testing.T) {
		resp, err := client.Post(server.URL+"/v1/generate", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, resp.StatusCode)
		}
	})

	t.Run("session cookie namespaces presets", func(t *testing.T) {
		resp, err := client.Post(server.URL+"/v1/presets", "application/json", strings.NewReader(`{"name":"Mine"}`))
		if err != nil {
			t.Fatalf("Failed to create preset: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected status code %d, got %d", http.StatusCreated, resp.StatusCode)
		}

		countPresets := func(c *http.Client) int {
			resp, err := c.Get(server.URL + "/v1/presets")
			if err != nil {
				t.Fatalf("Failed to list presets: %v", err)
			}
			defer resp.Body.Close()

			var body struct {
				Presets []json.RawMessage `json:"presets"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode presets: %v", err)
			}
			return len(body.Presets)
		}

		if n := countPresets(client); n != 5 {
			t.Errorf("Expected 5 presets for this session, got %d", n)
		}
		if n := countPresets(&http.Client{}); n != 4 {
			t.Errorf("Expected the built-in presets for a new session, got %d", n)
		}
	})

	t.Run("conversation lifecycle", func(t *testing.T) {
		resp, err := client.Post(server.URL+"/v1/conversations", "application/json", nil)
		if err != nil {
			t.Fatalf("Failed to create conversation: %v", err)
		}
		var conv struct {
			ConversationID string `json:"conversationId"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
			t.Fatalf("Failed to decode conversation: %v", err)
		}
		resp.Body.Close()

		resp, err = client.Get(server.URL + "/v1/conversations/" + conv.ConversationID + "/stats")
		if err != nil {
			t.Fatalf("Failed to get stats: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status code %d, got %d", http.StatusOK, resp.StatusCode)
		}
	})

	t.Run("websocket endpoint", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/ws"

		ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect to WebSocket: %v", err)
		}
		defer ws.Close()

		if err := ws.WriteJSON(map[string]string{"id": "s1", "action": "nope"}); err != nil {
			t.Fatalf("Failed to write frame: %v", err)
		}

		_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		var frame struct {
			StreamID string            `json:"streamId"`
			Data     map[string]string `json:"data"`
		}
		if err := ws.ReadJSON(&frame); err != nil {
			t.Fatalf("Failed to read frame: %v", err)
		}
		if frame.StreamID != "s1" || frame.Data["type"] != "error" {
			t.Errorf("Expected an error frame for s1, got %+v", frame)
		}
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/metrics")
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status code %d, got %d", http.StatusOK, resp.StatusCode)
		}
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/invalid")
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status code %d, got %d", http.StatusNotFound, resp.StatusCode)
		}
	})
}
