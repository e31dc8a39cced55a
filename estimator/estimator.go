package estimator

import (
	"fmt"

	"vramcalc/logging"
)

// computeSizes runs the validated size formulas for one fetched config.
func computeSizes(config ModelConfig, context, cacheBits int, bpw float64) (SizeResult, error) {
	if context <= 0 {
		return SizeResult{}, fmt.Errorf("%w: %d", ErrInvalidContextLength, context)
	}
	if bpw <= 0 {
		return SizeResult{}, fmt.Errorf("%w: non-positive bpw %g", ErrInvalidQuantization, bpw)
	}
	if err := validateCacheBits(cacheBits); err != nil {
		return SizeResult{}, err
	}
	if err := validateArchitecture(config); err != nil {
		return SizeResult{}, err
	}

	modelSize := bytesToGiB(modelSizeBytes(config.NumParams, bpw))
	contextSize := bytesToGiB(contextSizeBytes(config, context, cacheBits))

	return SizeResult{
		ModelSize:   modelSize,
		ContextSize: contextSize,
		TotalSize:   modelSize + contextSize,
	}, nil
}

// ComputeSizesEXL2 estimates VRAM usage for a model quantised with EXL2 at
// the given bits per weight, with the KV cache held at cacheBit precision.
func (c *Client) ComputeSizesEXL2(modelID string, context, cacheBit int, bpw float64) (SizeResult, error) {
	logging.DebugLogger.Printf("Estimating EXL2 sizes for %s (context=%d, cache_bit=%d, bpw=%g)\n", modelID, context, cacheBit, bpw)

	config, err := c.GetModelConfig(modelID)
	if err != nil {
		return SizeResult{}, err
	}
	return computeSizes(config, context, cacheBit, bpw)
}

// ComputeSizesGGUF estimates VRAM usage for a model quantised at a named
// GGUF level. The KV cache precision comes from the Client's GGUFCacheBits
// (fp16 by default).
func (c *Client) ComputeSizesGGUF(modelID string, context int, quantLevel string) (SizeResult, error) {
	logging.DebugLogger.Printf("Estimating GGUF sizes for %s (context=%d, quant=%s)\n", modelID, context, quantLevel)

	bpw, err := GGUFBitsPerWeight(quantLevel)
	if err != nil {
		return SizeResult{}, err
	}
	config, err := c.GetModelConfig(modelID)
	if err != nil {
		return SizeResult{}, err
	}
	return computeSizes(config, context, c.ggufCacheBits(), bpw)
}

// ComputeSizesEXL2 estimates sizes against the default registry client.
func ComputeSizesEXL2(modelID string, context, cacheBit int, bpw float64) (SizeResult, error) {
	return DefaultClient.ComputeSizesEXL2(modelID, context, cacheBit, bpw)
}

// ComputeSizesGGUF estimates sizes against the default registry client.
func ComputeSizesGGUF(modelID string, context int, quantLevel string) (SizeResult, error) {
	return DefaultClient.ComputeSizesGGUF(modelID, context, quantLevel)
}
