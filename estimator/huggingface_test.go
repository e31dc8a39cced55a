package estimator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// newTestRegistry serves the given path → body fixtures and returns a Client
// pointed at it, plus a counter of requests received.
func newTestRegistry(t *testing.T, files map[string]string) (*Client, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client := NewClient()
	client.BaseURL = server.URL
	return client, &requests
}

func TestGetModelConfig(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		expected ModelConfig
	}{
		{
			name: "Llama-style field names with safetensors index",
			files: map[string]string{
				"/acme/llama-7b/raw/main/config.json": `{
					"hidden_size": 4096,
					"num_hidden_layers": 32,
					"num_attention_heads": 32,
					"num_key_value_heads": 8,
					"intermediate_size": 14336,
					"vocab_size": 32000,
					"max_position_embeddings": 8192
				}`,
				"/acme/llama-7b/resolve/main/model.safetensors.index.json": `{"metadata": {"total_size": 14000000000}}`,
			},
			expected: ModelConfig{
				ModelID:               "acme/llama-7b",
				NumParams:             7000000000,
				MaxPositionEmbeddings: 8192,
				NumHiddenLayers:       32,
				HiddenSize:            4096,
				NumKeyValueHeads:      8,
				NumAttentionHeads:     32,
				IntermediateSize:      14336,
				VocabSize:             32000,
			},
		},
		{
			name: "GPT-2 style field names default kv heads to attention heads",
			files: map[string]string{
				"/acme/gpt2/raw/main/config.json": `{
					"n_embd": 1024,
					"n_layer": 24,
					"n_head": 16,
					"n_inner": 4096,
					"vocab_size": 50257,
					"n_positions": 1024
				}`,
				"/acme/gpt2/resolve/main/pytorch_model.bin.index.json": `{"metadata": {"total_size": 710000000}}`,
			},
			expected: ModelConfig{
				ModelID:               "acme/gpt2",
				NumParams:             355000000,
				MaxPositionEmbeddings: 1024,
				NumHiddenLayers:       24,
				HiddenSize:            1024,
				NumKeyValueHeads:      16,
				NumAttentionHeads:     16,
				IntermediateSize:      4096,
				VocabSize:             50257,
			},
		},
		{
			name: "Falcon-style kv head spelling",
			files: map[string]string{
				"/acme/falcon/raw/main/config.json": `{
					"hidden_size": 4544,
					"n_layer": 32,
					"n_head": 71,
					"n_head_kv": 1,
					"ffn_dim": 18176,
					"vocab_size": 65024
				}`,
				"/acme/falcon/resolve/main/model.safetensors.index.json": `{"metadata": {"total_size": 14000000000}}`,
			},
			expected: ModelConfig{
				ModelID:           "acme/falcon",
				NumParams:         7000000000,
				NumHiddenLayers:   32,
				HiddenSize:        4544,
				NumKeyValueHeads:  1,
				NumAttentionHeads: 71,
				IntermediateSize:  18176,
				VocabSize:         65024,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestRegistry(t, tt.files)
			config, err := client.GetModelConfig(tt.expected.ModelID)
			if err != nil {
				t.Fatalf("GetModelConfig() unexpected error: %v", err)
			}
			if config != tt.expected {
				t.Errorf("GetModelConfig() = %+v, expected %+v", config, tt.expected)
			}
		})
	}
}

func TestGetModelConfigMissingField(t *testing.T) {
	client, _ := newTestRegistry(t, map[string]string{
		"/acme/broken/raw/main/config.json": `{"num_hidden_layers": 32, "num_attention_heads": 32}`,
	})

	_, err := client.GetModelConfig("acme/broken")

	var malformed *MalformedConfigError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedConfigError, got %v", err)
	}
	if malformed.Field != "hidden_size" {
		t.Errorf("MalformedConfigError.Field = %q, expected %q", malformed.Field, "hidden_size")
	}
}

func TestGetModelConfigUndecodableBody(t *testing.T) {
	client, _ := newTestRegistry(t, map[string]string{
		"/acme/garbage/raw/main/config.json": `<!DOCTYPE html><html>not json</html>`,
	})

	_, err := client.GetModelConfig("acme/garbage")

	var malformed *MalformedConfigError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedConfigError, got %v", err)
	}
}

func TestGetModelConfigNotFound(t *testing.T) {
	client, _ := newTestRegistry(t, nil)

	_, err := client.GetModelConfig("acme/does-not-exist")
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestGetModelConfigNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused from here on

	client := NewClient()
	client.BaseURL = server.URL

	_, err := client.GetModelConfig("acme/unreachable")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestGetModelConfigDerivesParamsWithoutIndex(t *testing.T) {
	client, _ := newTestRegistry(t, map[string]string{
		"/acme/no-index/raw/main/config.json": `{
			"hidden_size": 4096,
			"num_hidden_layers": 32,
			"num_attention_heads": 32,
			"num_key_value_heads": 8,
			"intermediate_size": 14336,
			"vocab_size": 32000,
			"max_position_embeddings": 8192
		}`,
	})

	config, err := client.GetModelConfig("acme/no-index")
	if err != nil {
		t.Fatalf("GetModelConfig() unexpected error: %v", err)
	}

	expected, err := deriveNumParams(config)
	if err != nil {
		t.Fatalf("deriveNumParams() unexpected error: %v", err)
	}
	if config.NumParams != expected {
		t.Errorf("NumParams = %v, expected derived %v", config.NumParams, expected)
	}
	// A 32-layer 4096-hidden GQA model lands around 7B parameters.
	if config.NumParams < 6e9 || config.NumParams > 8e9 {
		t.Errorf("derived NumParams = %v, expected roughly 7e9", config.NumParams)
	}
}

func TestGetModelConfigDeriveRequiresVocab(t *testing.T) {
	client, _ := newTestRegistry(t, map[string]string{
		"/acme/no-vocab/raw/main/config.json": `{
			"hidden_size": 4096,
			"num_hidden_layers": 32,
			"num_attention_heads": 32,
			"intermediate_size": 14336
		}`,
	})

	_, err := client.GetModelConfig("acme/no-vocab")

	var malformed *MalformedConfigError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedConfigError, got %v", err)
	}
	if malformed.Field != "vocab_size" {
		t.Errorf("MalformedConfigError.Field = %q, expected %q", malformed.Field, "vocab_size")
	}
}

func TestGetModelConfigCaches(t *testing.T) {
	client, requests := newTestRegistry(t, map[string]string{
		"/acme/cached/raw/main/config.json": `{
			"hidden_size": 4096,
			"num_hidden_layers": 32,
			"num_attention_heads": 32,
			"vocab_size": 32000,
			"intermediate_size": 14336
		}`,
	})

	if _, err := client.GetModelConfig("acme/cached"); err != nil {
		t.Fatalf("first GetModelConfig() unexpected error: %v", err)
	}
	after := requests.Load()

	if _, err := client.GetModelConfig("acme/cached"); err != nil {
		t.Fatalf("second GetModelConfig() unexpected error: %v", err)
	}
	if requests.Load() != after {
		t.Errorf("second GetModelConfig() hit the registry (%d requests, expected %d)", requests.Load(), after)
	}
}
