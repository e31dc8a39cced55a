package estimator

import (
	"fmt"
	"math"
)

// batchSize is the batch the inference buffers are sized for. The compute
// buffer formula is only calibrated for a batch of 512; other batch sizes
// would overestimate.
const batchSize = 512

func validateArchitecture(config ModelConfig) error {
	if config.HiddenSize <= 0 || config.NumHiddenLayers <= 0 ||
		config.NumAttentionHeads <= 0 || config.NumKeyValueHeads <= 0 {
		return fmt.Errorf("%w: non-positive dimension (hidden_size=%d, num_hidden_layers=%d, num_attention_heads=%d, num_key_value_heads=%d)",
			ErrInvalidArchitecture, config.HiddenSize, config.NumHiddenLayers, config.NumAttentionHeads, config.NumKeyValueHeads)
	}
	if config.HiddenSize%config.NumAttentionHeads != 0 {
		return fmt.Errorf("%w: hidden_size %d is not divisible by num_attention_heads %d",
			ErrInvalidArchitecture, config.HiddenSize, config.NumAttentionHeads)
	}
	if config.NumParams <= 0 {
		return fmt.Errorf("%w: non-positive parameter count %g", ErrInvalidArchitecture, config.NumParams)
	}
	return nil
}

func validateCacheBits(cacheBits int) error {
	switch cacheBits {
	case 4, 8, 16:
		return nil
	default:
		return fmt.Errorf("%w: cache bit width must be 4, 8 or 16, got %d", ErrInvalidQuantization, cacheBits)
	}
}

// modelSizeBytes is the quantised weight storage size in bytes.
func modelSizeBytes(numParams, bpw float64) float64 {
	return numParams * bpw / 8
}

// kvCacheBytes is the key/value cache size in bytes for a given context.
// The per-head dimension is hidden_size / num_attention_heads; with
// grouped-query attention only num_key_value_heads of those are stored, so
// the cache shrinks by the query/kv head ratio.
func kvCacheBytes(config ModelConfig, context, cacheBits int) float64 {
	nGQA := float64(config.NumAttentionHeads) / float64(config.NumKeyValueHeads)
	embdGQA := float64(config.HiddenSize) / nGQA
	elements := embdGQA * float64(config.NumHiddenLayers*context)
	return 2 * elements * float64(cacheBits) / 8
}

// inputBufferBytes covers the token, embedding, position, KQ mask and shift
// buffers held alongside the cache during inference.
func inputBufferBytes(config ModelConfig, context int) float64 {
	inpTokens := batchSize
	inpEmbd := config.HiddenSize * batchSize
	inpPos := batchSize
	inpKQMask := context * batchSize
	inpKShift := context
	inpSum := batchSize
	return float64(inpTokens + inpEmbd + inpPos + inpKQMask + inpKShift + inpSum)
}

// computeBufferBytes is the scratch allocation llama.cpp-style runtimes make
// for a batch-512 forward pass.
func computeBufferBytes(config ModelConfig, context int) float64 {
	return (float64(context)/1024*2 + 0.75) * float64(config.NumAttentionHeads) * 1024 * 1024
}

// contextSizeBytes is the full per-context memory cost: KV cache plus the
// input and compute buffers.
func contextSizeBytes(config ModelConfig, context, cacheBits int) float64 {
	return inputBufferBytes(config, context) + kvCacheBytes(config, context, cacheBits) + computeBufferBytes(config, context)
}

// bytesToGiB converts bytes to gibibytes
func bytesToGiB(bytes float64) float64 {
	return bytes / math.Pow(2, 30)
}
