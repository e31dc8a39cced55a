package estimator

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"vramcalc/logging"
)

// DefaultRegistryURL is the model registry queried for architecture metadata.
const DefaultRegistryURL = "https://huggingface.co"

// DefaultGGUFCacheBits is the KV cache precision assumed for GGUF estimates
// when the caller does not configure one (fp16).
const DefaultGGUFCacheBits = 16

var errUndecodableBody = errors.New("undecodable response body")

// Client fetches model architecture metadata from a HuggingFace-style
// registry and computes size estimates against it. Fetched configs are
// cached in memory for the lifetime of the Client, so repeated estimates
// for one model hit the network once. The zero value is usable and talks
// to huggingface.co.
type Client struct {
	BaseURL       string       // registry root, DefaultRegistryURL if empty
	Token         string       // optional bearer token for gated models
	HTTPClient    *http.Client // defaults to a 30s-timeout client
	GGUFCacheBits int          // KV cache bits for GGUF estimates, DefaultGGUFCacheBits if 0

	mu    sync.RWMutex
	cache map[string]ModelConfig
}

// NewClient returns a Client against the default registry.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultRegistryURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// DefaultClient serves the package-level Compute functions.
var DefaultClient = NewClient()

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultRegistryURL
	}
	return c.BaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: 30 * time.Second}
	}
	return c.HTTPClient
}

func (c *Client) ggufCacheBits() int {
	if c.GGUFCacheBits == 0 {
		return DefaultGGUFCacheBits
	}
	return c.GGUFCacheBits
}

// getJSON fetches one registry file and decodes it into out.
func (c *Client) getJSON(path string, out any) error {
	url := c.baseURL() + "/" + path
	logging.DebugLogger.Printf("Fetching %s\n", url)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrModelNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s returned %s", ErrNetwork, url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errUndecodableBody, err)
	}
	return nil
}

// fieldSpellings maps each canonical architecture field to the key names it
// appears under across model families (llama-style first, then GPT-2, MPT
// and Falcon style spellings).
var fieldSpellings = map[string][]string{
	"hidden_size":             {"hidden_size", "n_embd", "d_model", "hidden_dim"},
	"num_hidden_layers":       {"num_hidden_layers", "n_layer", "n_layers", "num_layers"},
	"num_attention_heads":     {"num_attention_heads", "n_head", "n_heads", "num_heads"},
	"num_key_value_heads":     {"num_key_value_heads", "n_head_kv", "num_kv_heads"},
	"vocab_size":              {"vocab_size", "n_vocab", "padded_vocab_size"},
	"intermediate_size":       {"intermediate_size", "n_inner", "ffn_dim", "ffn_hidden_size"},
	"max_position_embeddings": {"max_position_embeddings", "n_positions", "n_ctx", "max_sequence_length"},
}

func intField(raw map[string]any, canonical string) (int, bool) {
	for _, name := range fieldSpellings[canonical] {
		if v, ok := raw[name]; ok {
			if f, ok := v.(float64); ok {
				return int(f), true
			}
		}
	}
	return 0, false
}

// normalizeConfig maps a raw registry config onto the canonical ModelConfig.
// hidden_size, num_hidden_layers and num_attention_heads are required under
// some known spelling; num_key_value_heads falls back to the attention head
// count (no grouped-query attention).
func normalizeConfig(modelID string, raw map[string]any) (ModelConfig, error) {
	config := ModelConfig{ModelID: modelID}

	required := []struct {
		name string
		dst  *int
	}{
		{"hidden_size", &config.HiddenSize},
		{"num_hidden_layers", &config.NumHiddenLayers},
		{"num_attention_heads", &config.NumAttentionHeads},
	}
	for _, f := range required {
		v, ok := intField(raw, f.name)
		if !ok {
			return ModelConfig{}, &MalformedConfigError{ModelID: modelID, Field: f.name}
		}
		*f.dst = v
	}

	if v, ok := intField(raw, "num_key_value_heads"); ok {
		config.NumKeyValueHeads = v
	} else {
		config.NumKeyValueHeads = config.NumAttentionHeads
	}
	config.VocabSize, _ = intField(raw, "vocab_size")
	config.IntermediateSize, _ = intField(raw, "intermediate_size")
	config.MaxPositionEmbeddings, _ = intField(raw, "max_position_embeddings")

	return config, nil
}

// fetchNumParams reads the parameter count from the model's weight index
// metadata. The index records total fp16 bytes, so the parameter count is
// half of it. Models without either index return 0 and the caller derives
// the count from the architecture instead.
func (c *Client) fetchNumParams(modelID string) float64 {
	for _, indexFile := range []string{"model.safetensors.index.json", "pytorch_model.bin.index.json"} {
		var index struct {
			Metadata struct {
				TotalSize float64 `json:"total_size"`
			} `json:"metadata"`
		}
		err := c.getJSON(modelID+"/resolve/main/"+indexFile, &index)
		if err == nil && index.Metadata.TotalSize > 0 {
			return index.Metadata.TotalSize / 2
		}
		logging.DebugLogger.Printf("No parameter count from %s: %v\n", indexFile, err)
	}
	return 0
}

// deriveNumParams estimates the parameter count from the architecture when
// no weight index is published: tied embeddings and LM head, and per layer
// the Q/O projections, the K/V projections at grouped-query width, a gated
// feed-forward and two norms.
func deriveNumParams(config ModelConfig) (float64, error) {
	if config.VocabSize <= 0 {
		return 0, &MalformedConfigError{ModelID: config.ModelID, Field: "vocab_size"}
	}
	if config.IntermediateSize <= 0 {
		return 0, &MalformedConfigError{ModelID: config.ModelID, Field: "intermediate_size"}
	}

	hidden := float64(config.HiddenSize)
	headDim := hidden / float64(config.NumAttentionHeads)
	kvDim := headDim * float64(config.NumKeyValueHeads)

	attention := 2*hidden*hidden + 2*hidden*kvDim
	feedForward := 3 * hidden * float64(config.IntermediateSize)
	norms := 2 * hidden
	perLayer := attention + feedForward + norms

	embeddings := 2 * float64(config.VocabSize) * hidden
	return embeddings + float64(config.NumHiddenLayers)*perLayer + hidden, nil
}

// GetModelConfig retrieves, normalises and caches the model configuration.
func (c *Client) GetModelConfig(modelID string) (ModelConfig, error) {
	c.mu.RLock()
	if config, ok := c.cache[modelID]; ok {
		c.mu.RUnlock()
		return config, nil
	}
	c.mu.RUnlock()

	var raw map[string]any
	if err := c.getJSON(modelID+"/raw/main/config.json", &raw); err != nil {
		if errors.Is(err, errUndecodableBody) {
			return ModelConfig{}, &MalformedConfigError{ModelID: modelID, Err: err}
		}
		return ModelConfig{}, err
	}

	config, err := normalizeConfig(modelID, raw)
	if err != nil {
		return ModelConfig{}, err
	}

	config.NumParams = c.fetchNumParams(modelID)
	if config.NumParams == 0 {
		config.NumParams, err = deriveNumParams(config)
		if err != nil {
			return ModelConfig{}, err
		}
		logging.InfoLogger.Printf("No weight index for %s, derived %.0f parameters from architecture\n", modelID, config.NumParams)
	}

	c.mu.Lock()
	if c.cache == nil {
		c.cache = make(map[string]ModelConfig)
	}
	c.cache[modelID] = config
	c.mu.Unlock()

	return config, nil
}
