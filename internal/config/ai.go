package config

import "os"

// JudgeConfig describes one external judge in the AI validation chain
type JudgeConfig struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	BaseURL string `json:"baseUrl"`
	APIKey  string `json:"-"` // Never serialize
}

// IsEnabled returns true if this judge has credentials configured
func (j *JudgeConfig) IsEnabled() bool {
	return j.APIKey != ""
}

// Endpoint returns the full generateContent endpoint for this judge's model
func (j *JudgeConfig) Endpoint() string {
	return j.BaseURL + "/" + j.Model + ":generateContent"
}

// AIConfig holds the judge chain for AI-assisted answer validation.
// Primary is tried first; Secondary is consulted when the primary is
// unavailable or its confidence is low.
type AIConfig struct {
	Primary   JudgeConfig `json:"primary"`
	Secondary JudgeConfig `json:"secondary"`
	TimeoutMS int         `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI judge configuration
func DefaultAIConfig() *AIConfig {
	baseURL := getEnv("AI_JUDGE_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models")
	return &AIConfig{
		Primary: JudgeConfig{
			Name:    "primary",
			Model:   getEnv("AI_JUDGE_PRIMARY_MODEL", "gemini-2.5-flash"),
			BaseURL: baseURL,
			APIKey:  os.Getenv("AI_JUDGE_API_KEY"),
		},
		Secondary: JudgeConfig{
			Name:    "secondary",
			Model:   getEnv("AI_JUDGE_SECONDARY_MODEL", "gemini-2.0-flash"),
			BaseURL: baseURL,
			APIKey:  os.Getenv("AI_JUDGE_API_KEY"),
		},
		TimeoutMS: 10000, // 10 second default timeout
	}
}

// IsEnabled returns true if at least one judge is configured
func (c *AIConfig) IsEnabled() bool {
	return c.Primary.IsEnabled() || c.Secondary.IsEnabled()
}
