package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"lettersprint/internal/config"
	"lettersprint/internal/model"
)

const lowConfidenceCutoff = 0.5

// AIStrategy delegates judgment to external AI judges in a fallback chain:
// the primary judge first, then the secondary when the primary is
// unavailable or not confident. Total failure yields an invalid verdict
// with zero confidence rather than an error.
type AIStrategy struct {
	cfg    *config.AIConfig
	client *http.Client
}

// NewAIStrategy creates a new AI strategy
func NewAIStrategy(cfg *config.AIConfig) *AIStrategy {
	return &AIStrategy{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

func (s *AIStrategy) Name() string { return "ai" }

// judgeVerdict is the JSON shape every judge is asked to return
type judgeVerdict struct {
	IsValid     bool     `json:"isValid"`
	Confidence  float64  `json:"confidence"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (s *AIStrategy) Validate(ctx context.Context, req *model.ValidationRequest) (*model.ValidationResult, error) {
	if !s.cfg.IsEnabled() {
		return invalidResult(req, model.ValidationAI, "no AI judge configured"), nil
	}

	verdict, judge := s.askChain(ctx, req)
	if verdict == nil {
		return invalidResult(req, model.ValidationAI, "all AI judges unavailable"), nil
	}

	return &model.ValidationResult{
		RequestID:   req.ID,
		Answer:      req.Answer,
		Category:    req.Category,
		IsValid:     verdict.IsValid,
		Confidence:  verdict.Confidence,
		Method:      model.ValidationAI,
		Reason:      fmt.Sprintf("%s (%s)", verdict.Reason, judge),
		Suggestions: verdict.Suggestions,
	}, nil
}

// askChain tries the primary judge, escalating to the secondary when the
// primary fails or is unsure. Returns nil when every judge failed.
func (s *AIStrategy) askChain(ctx context.Context, req *model.ValidationRequest) (*judgeVerdict, string) {
	prompt := s.buildPrompt(req)

	var best *judgeVerdict
	bestJudge := ""

	if s.cfg.Primary.IsEnabled() {
		if v, err := s.askJudge(ctx, &s.cfg.Primary, prompt); err != nil {
			log.Printf("AI judge %s failed for room %s: %v", s.cfg.Primary.Name, req.RoomCode, err)
		} else {
			best = v
			bestJudge = s.cfg.Primary.Name
		}
	}

	if (best == nil || best.Confidence < lowConfidenceCutoff) && s.cfg.Secondary.IsEnabled() {
		if v, err := s.askJudge(ctx, &s.cfg.Secondary, prompt); err != nil {
			log.Printf("AI judge %s failed for room %s: %v", s.cfg.Secondary.Name, req.RoomCode, err)
		} else if best == nil || v.Confidence > best.Confidence {
			best = v
			bestJudge = s.cfg.Secondary.Name
		}
	}

	return best, bestJudge
}

// askJudge makes one request to a judge endpoint
func (s *AIStrategy) askJudge(ctx context.Context, judge *config.JudgeConfig, prompt string) (*judgeVerdict, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s?key=%s", judge.Endpoint(), judge.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: judge returned status %d", ErrProviderFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var judgeResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &judgeResp); err != nil {
		return nil, err
	}
	if len(judgeResp.Candidates) == 0 || len(judgeResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response from judge", ErrProviderFailure)
	}

	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(judgeResp.Candidates[0].Content.Parts[0].Text), &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

func (s *AIStrategy) buildPrompt(req *model.ValidationRequest) string {
	return fmt.Sprintf(`You are judging an answer in a word game. The answer must be a real %s starting with the letter %q.
Return ONLY valid JSON matching this schema:
{
  "isValid": true or false,
  "confidence": 0.0 to 1.0,
  "reason": "one short sentence",
  "suggestions": ["optional alternatives if invalid"]
}

Category: %s
Letter: %s
Answer: %q

Judge strictly: misspellings and made-up words are invalid.`,
		req.Category, req.Letter, req.Category, req.Letter, req.Answer)
}
