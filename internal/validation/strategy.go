package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lettersprint/internal/model"
)

// ErrProviderFailure signals that an external validation provider was
// unreachable or timed out. It never escapes the pipeline; the affected
// answer is scored invalid with zero confidence instead.
var ErrProviderFailure = errors.New("validation provider failure")

// Strategy judges a single answer for a category and letter. Implementations
// must return within the request context's deadline and must not mutate
// the request.
type Strategy interface {
	Validate(ctx context.Context, req *model.ValidationRequest) (*model.ValidationResult, error)
	Name() string
}

// CheckFormat runs the strategy-independent checks every answer must pass
// before any strategy is consulted: non-empty, under the length cap, and
// case-insensitively prefixed by the round's letter.
func CheckFormat(answer, letter string) (bool, string) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return false, "answer is empty"
	}
	if len(answer) > model.MaxAnswerLength {
		return false, fmt.Sprintf("answer too long (max %d characters)", model.MaxAnswerLength)
	}
	if !strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(letter)) {
		return false, fmt.Sprintf("answer must start with letter %q", strings.ToUpper(letter))
	}
	return true, ""
}

func invalidResult(req *model.ValidationRequest, mode model.ValidationMode, reason string) *model.ValidationResult {
	return &model.ValidationResult{
		RequestID:  req.ID,
		Answer:     req.Answer,
		Category:   req.Category,
		IsValid:    false,
		Confidence: 0.0,
		Method:     mode,
		Reason:     reason,
	}
}
