package lemonade

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBuildChatPayload(t *testing.T) {
	messages := []ChatMessage{{Role: "user", Content: "hi"}}

	tests := []struct {
		name        string
		opts        Options
		wantKeys    map[string]any
		missingKeys []string
	}{
		{
			name:        "null parameters are dropped",
			opts:        Options{"temperature": 0.5, "max_tokens": nil},
			wantKeys:    map[string]any{"temperature": 0.5, "stream": false},
			missingKeys: []string{"max_tokens"},
		},
		{
			name:        "no options",
			opts:        nil,
			wantKeys:    map[string]any{"stream": false},
			missingKeys: []string{"temperature", "top_p", "options"},
		},
		{
			name:        "unknown parameters are ignored",
			opts:        Options{"seed": 42, "top_k": 40},
			wantKeys:    map[string]any{"top_k": 40},
			missingKeys: []string{"seed"},
		},
		{
			name:     "stream flag is forwarded",
			opts:     Options{"stream": true},
			wantKeys: map[string]any{"stream": true},
		},
		{
			name:     "non-boolean stream is forwarded as given",
			opts:     Options{"stream": "yes"},
			wantKeys: map[string]any{"stream": "yes"},
		},
		{
			name:     "null stream is forwarded",
			opts:     Options{"stream": nil},
			wantKeys: map[string]any{"stream": nil},
		},
		{
			name:     "server options pass through",
			opts:     Options{"options": map[string]any{"num_ctx": 2048}, "stop": []string{"\n"}},
			wantKeys: map[string]any{"options": map[string]any{"num_ctx": 2048}, "stop": []string{"\n"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := BuildChatPayload("modelX", messages, tt.opts)

			if payload["model"] != "modelX" {
				t.Errorf("model = %v, want modelX", payload["model"])
			}
			if !reflect.DeepEqual(payload["messages"], messages) {
				t.Errorf("messages = %v, want %v", payload["messages"], messages)
			}
			for key, want := range tt.wantKeys {
				if got, ok := payload[key]; !ok || !reflect.DeepEqual(got, want) {
					t.Errorf("payload[%q] = %v (present %v), want %v", key, got, ok, want)
				}
			}
			for _, key := range tt.missingKeys {
				if _, ok := payload[key]; ok {
					t.Errorf("payload unexpectedly contains %q", key)
				}
			}
		})
	}
}

func TestBuildChatPayloadMessageOrder(t *testing.T) {
	messages := []ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "two"},
	}
	data, err := json.Marshal(BuildChatPayload("m", messages, nil))
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	var decoded struct {
		Messages []ChatMessage `json:"messages"`
		Stream   bool          `json:"stream"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	if !reflect.DeepEqual(decoded.Messages, messages) {
		t.Errorf("messages = %v, want %v", decoded.Messages, messages)
	}

	// nil messages still encode as a JSON array
	data, _ = json.Marshal(BuildChatPayload("m", nil, nil))
	var raw map[string]any
	json.Unmarshal(data, &raw)
	if list, ok := raw["messages"].([]any); !ok || len(list) != 0 {
		t.Errorf("messages = %v, want []", raw["messages"])
	}
}

func TestBuildModelLoadPayload(t *testing.T) {
	payload := BuildModelLoadPayload("Qwen", Options{"ctx_size": 4096, "device": nil})
	want := Payload{"model": "Qwen", "ctx_size": 4096, "device": nil}
	if !reflect.DeepEqual(payload, want) {
		t.Errorf("BuildModelLoadPayload() = %v, want %v", payload, want)
	}

	if payload := BuildModelLoadPayload("Qwen", nil); !reflect.DeepEqual(payload, Payload{"model": "Qwen"}) {
		t.Errorf("BuildModelLoadPayload(nil opts) = %v", payload)
	}
}

func TestBuildEmbeddingPayload(t *testing.T) {
	payload := BuildEmbeddingPayload("text", "nomic", Options{"encoding_format": "float"})
	want := Payload{"input": "text", "model": "nomic", "encoding_format": "float"}
	if !reflect.DeepEqual(payload, want) {
		t.Errorf("BuildEmbeddingPayload() = %v, want %v", payload, want)
	}
}
