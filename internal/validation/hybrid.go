package validation

import (
	"context"

	"lettersprint/internal/model"
)

// HybridStrategy composes two strategies: the dictionary answers first, and
// only a dictionary miss escalates to the fallback. A dictionary hit is
// final since its confidence is already 1.0.
type HybridStrategy struct {
	dictionary *DictionaryStrategy
	fallback   Strategy
}

// NewHybridStrategy creates a new hybrid strategy
func NewHybridStrategy(dictionary *DictionaryStrategy, fallback Strategy) *HybridStrategy {
	return &HybridStrategy{dictionary: dictionary, fallback: fallback}
}

func (s *HybridStrategy) Name() string { return "hybrid" }

func (s *HybridStrategy) Validate(ctx context.Context, req *model.ValidationRequest) (*model.ValidationResult, error) {
	result, err := s.dictionary.Validate(ctx, req)
	if err == nil && result.IsValid {
		result.Method = model.ValidationHybrid
		return result, nil
	}

	fallbackResult, fbErr := s.fallback.Validate(ctx, req)
	if fbErr != nil {
		// Dictionary already said no and the fallback failed; keep the
		// dictionary verdict when we have one.
		if err == nil {
			result.Method = model.ValidationHybrid
			return result, nil
		}
		return nil, fbErr
	}
	fallbackResult.Method = model.ValidationHybrid
	return fallbackResult, nil
}
