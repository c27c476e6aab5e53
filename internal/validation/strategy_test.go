package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"lettersprint/internal/model"
)

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		letter string
		ok     bool
	}{
		{"valid", "Dog", "D", true},
		{"case insensitive prefix", "dog", "D", true},
		{"leading whitespace", "  dog", "D", true},
		{"empty", "", "D", false},
		{"whitespace only", "   ", "D", false},
		{"wrong letter", "Cat", "D", false},
		{"too long", "d" + strings.Repeat("x", model.MaxAnswerLength), "D", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := CheckFormat(tc.answer, tc.letter)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				assert.NotEmpty(t, reason)
			}
		})
	}
}
