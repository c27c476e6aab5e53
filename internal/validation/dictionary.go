package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"lettersprint/internal/model"
	"lettersprint/internal/repository"
)

const (
	maxSuggestions          = 3
	suggestionMinSimilarity = 0.6
)

// DictionaryStrategy checks answers against a category-scoped word list.
// Confidence is binary: 1.0 when the word is listed, 0.0 otherwise. On a
// miss it attaches near-miss suggestions by edit distance.
type DictionaryStrategy struct {
	dictRepo repository.DictionaryRepo
}

// NewDictionaryStrategy creates a new dictionary strategy
func NewDictionaryStrategy(dictRepo repository.DictionaryRepo) *DictionaryStrategy {
	return &DictionaryStrategy{dictRepo: dictRepo}
}

func (s *DictionaryStrategy) Name() string { return "dictionary" }

func (s *DictionaryStrategy) Validate(ctx context.Context, req *model.ValidationRequest) (*model.ValidationResult, error) {
	normalized := model.NormalizeAnswer(req.Answer)

	exists, err := s.dictRepo.WordExists(ctx, req.Category, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: dictionary lookup: %v", ErrProviderFailure, err)
	}

	result := &model.ValidationResult{
		RequestID: req.ID,
		Answer:    req.Answer,
		Category:  req.Category,
		Method:    model.ValidationDictionary,
	}

	if exists {
		result.IsValid = true
		result.Confidence = 1.0
		result.Reason = "word found in dictionary"
		return result, nil
	}

	result.Confidence = 0.0
	result.Reason = "word not found in dictionary"
	result.Suggestions = s.suggestions(ctx, req.Category, normalized, req.Letter)
	return result, nil
}

// suggestions returns up to three dictionary words that start with the round
// letter and sit close to the rejected answer by edit distance. Lookup
// failures just mean no suggestions.
func (s *DictionaryStrategy) suggestions(ctx context.Context, category, answer, letter string) []string {
	words, err := s.dictRepo.GetWords(ctx, category)
	if err != nil || len(words) == 0 {
		return nil
	}

	type candidate struct {
		word  string
		score float64
	}
	candidates := []candidate{}
	lowerLetter := strings.ToLower(letter)
	for _, word := range words {
		if !strings.HasPrefix(word, lowerLetter) {
			continue
		}
		if sim := similarity(answer, word); sim > suggestionMinSimilarity {
			candidates = append(candidates, candidate{word: word, score: sim})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].word < candidates[j].word
	})

	suggestions := []string{}
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		suggestions = append(suggestions, candidates[i].word)
	}
	return suggestions
}

func similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min3(curr[i-1]+1, prev[i]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
