// Package tokenizer estimates how many model tokens a rendered structure occupies.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters.
type Config struct {
	Model string
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a tiktoken Counter for the requested model together with the
// name of the model or encoding actually used. Models tiktoken does not know fall
// back to the cl100k_base encoding.
func NewCounter(cfg Config) (Counter, string, error) {
	model := ResolveModel(cfg.Model)
	if isOpenAIModel(model) {
		encoding, err := tiktoken.EncodingForModel(model)
		if err == nil && encoding != nil {
			return openAICounter{encoding: encoding}, model, nil
		}
	}
	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackErr)
	}
	return openAICounter{encoding: fallback}, defaultEncodingName, nil
}

// ResolveModel trims and lowercases model, substituting the default when it is blank.
func ResolveModel(model string) string {
	trimmedModel := strings.ToLower(strings.TrimSpace(model))
	if trimmedModel == "" {
		return defaultModel
	}
	return trimmedModel
}

func isOpenAIModel(model string) bool {
	prefixes := []string{
		"gpt-",
		"text-embedding",
		"davinci",
		"curie",
		"babbage",
		"ada",
		"code-",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
