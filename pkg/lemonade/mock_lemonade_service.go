package lemonade

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type mockModel struct {
	ID         string `json:"id"`
	Object     string `json:"object"`
	Created    int64  `json:"created"`
	OwnedBy    string `json:"owned_by"`
	Checkpoint string `json:"checkpoint"`
	Recipe     string `json:"recipe"`
}

var mockModel1 = mockModel{
	ID:         "Qwen2.5-0.5B-Instruct-CPU",
	Object:     "model",
	Created:    1739520000,
	OwnedBy:    "lemonade",
	Checkpoint: "amd/Qwen2.5-0.5B-Instruct-quantized_int4-float16-cpu-onnx",
	Recipe:     "oga-cpu",
}

var mockModel2 = mockModel{
	ID:         "Llama-3.2-1B-Instruct-Hybrid",
	Object:     "model",
	Created:    1739520100,
	OwnedBy:    "lemonade",
	Checkpoint: "amd/Llama-3.2-1B-Instruct-awq-g128-int4-asym-fp16-onnx-hybrid",
	Recipe:     "oga-hybrid",
}

// MockLemonadeService is an in-process Lemonade server for unit tests.
// It serves the model list, chat completions, embeddings, model loading and
// the /api/v1/status active-model probe.
type MockLemonadeService struct {
	*httptest.Server

	mu       sync.Mutex
	models   []mockModel
	loaded   string
	payloads map[string]map[string]any
}

// NewMockLemonadeService creates a test HTTP server for unit testing.
// Handles Lemonade API endpoints as used in the test suite.
func NewMockLemonadeService(t *testing.T, logger Logger) *MockLemonadeService {
	t.Helper()

	m := &MockLemonadeService{
		models:   []mockModel{mockModel1, mockModel2},
		payloads: make(map[string]map[string]any),
	}

	mux := http.NewServeMux()

	mux.HandleFunc(ModelsEndpoint, func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		writeMockJSON(t, w, http.StatusOK, map[string]any{"object": "list", "data": m.models})
	})

	mux.HandleFunc(StatusEndpoint, func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.loaded == "" {
			writeMockJSON(t, w, http.StatusOK, map[string]any{"status": "ok"})
			return
		}
		writeMockJSON(t, w, http.StatusOK, map[string]any{"status": "ok", "active_model": m.loaded})
	})

	mux.HandleFunc(ChatCompletionEndpoint, func(w http.ResponseWriter, r *http.Request) {
		payload, ok := m.record(t, w, r)
		if !ok {
			return
		}
		model, _ := payload["model"].(string)
		if !m.hasModel(model) {
			writeMockJSON(t, w, http.StatusNotFound, map[string]any{"error": map[string]any{"message": "model " + model + " not found"}})
			return
		}
		logger.Debug("Mock server: chat completion for %s", model)
		writeMockJSON(t, w, http.StatusOK, map[string]any{
			"id":      "chatcmpl-mock",
			"object":  "chat.completion",
			"created": 1739520200,
			"model":   model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "Hello, world!"},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 5, "completion_tokens": 4, "total_tokens": 9},
		})
	})

	mux.HandleFunc(EmbeddingsEndpoint, func(w http.ResponseWriter, r *http.Request) {
		payload, ok := m.record(t, w, r)
		if !ok {
			return
		}
		writeMockJSON(t, w, http.StatusOK, map[string]any{
			"object": "list",
			"model":  payload["model"],
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float64{0.1, 0.2, 0.3}}},
		})
	})

	mux.HandleFunc(LoadModelEndpoint, func(w http.ResponseWriter, r *http.Request) {
		payload, ok := m.record(t, w, r)
		if !ok {
			return
		}
		model, _ := payload["model"].(string)
		if !m.hasModel(model) {
			writeMockJSON(t, w, http.StatusNotFound, map[string]any{"status": "error", "message": "model " + model + " not found"})
			return
		}
		m.mu.Lock()
		m.loaded = model
		m.mu.Unlock()
		writeMockJSON(t, w, http.StatusOK, map[string]any{"status": "success", "message": "Loaded model: " + model})
	})

	mux.HandleFunc(UnloadModelEndpoint, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.record(t, w, r); !ok {
			return
		}
		m.mu.Lock()
		m.loaded = ""
		m.mu.Unlock()
		writeMockJSON(t, w, http.StatusOK, map[string]any{"status": "success", "message": "Model unloaded successfully"})
	})

	m.Server = httptest.NewServer(mux)
	return m
}

// record decodes and stores the JSON body of a POST request.
func (m *MockLemonadeService) record(t *testing.T, w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	if r.Method != http.MethodPost {
		writeMockJSON(t, w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return nil, false
	}
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMockJSON(t, w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return nil, false
	}
	m.mu.Lock()
	m.payloads[r.URL.Path] = payload
	m.mu.Unlock()
	return payload, true
}

func (m *MockLemonadeService) hasModel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, model := range m.models {
		if model.ID == id {
			return true
		}
	}
	return false
}

// LastPayload returns the most recent JSON body POSTed to path.
func (m *MockLemonadeService) LastPayload(path string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payloads[path]
}

// LoadedModel returns the model most recently loaded and not yet unloaded.
func (m *MockLemonadeService) LoadedModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

func writeMockJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("Failed to write mock response: %v", err)
	}
}
