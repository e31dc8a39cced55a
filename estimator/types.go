package estimator

// KVCacheQuantisation represents the quantisation type for the k/v context cache
type KVCacheQuantisation string

const (
	KVCacheFP16 KVCacheQuantisation = "fp16"
	KVCacheQ8_0 KVCacheQuantisation = "q8_0"
	KVCacheQ4_0 KVCacheQuantisation = "q4_0"
)

// CacheBits returns the bit width of the cache quantisation, defaulting to fp16.
func (q KVCacheQuantisation) CacheBits() int {
	switch q {
	case KVCacheQ8_0:
		return 8
	case KVCacheQ4_0:
		return 4
	default:
		return 16
	}
}

// ModelConfig is the canonical architecture record for a model, normalised
// across the field-name variants used by different model families.
type ModelConfig struct {
	ModelID               string  `json:"model_id"`
	NumParams             float64 `json:"num_params"`
	MaxPositionEmbeddings int     `json:"max_position_embeddings"`
	NumHiddenLayers       int     `json:"num_hidden_layers"`
	HiddenSize            int     `json:"hidden_size"`
	NumKeyValueHeads      int     `json:"num_key_value_heads"`
	NumAttentionHeads     int     `json:"num_attention_heads"`
	IntermediateSize      int     `json:"intermediate_size"`
	VocabSize             int     `json:"vocab_size"`
}

// SizeResult holds the estimated sizes for one model/context/quantisation
// combination. All values are GiB. TotalSize is always the float sum of the
// other two fields as computed, never re-derived.
type SizeResult struct {
	ModelSize   float64 `json:"model_size"`
	ContextSize float64 `json:"context_size"`
	TotalSize   float64 `json:"total_size"`
}

// QuantRow is one GGUF quantisation level's estimates across context sizes.
type QuantRow struct {
	Level    string
	BPW      float64
	Contexts map[int]SizeResult
}

// QuantTable represents a table of VRAM estimation results for every
// supported GGUF level.
type QuantTable struct {
	ModelID      string
	ContextSizes []int
	Rows         []QuantRow
	FitsVRAM     float64
}
