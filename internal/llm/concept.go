package llm

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
)

var errConceptModelUnavailable = errors.New("concept model is not initialized")

// GenerateText sends a single prompt to the concept model and returns its raw completion.
// Provider errors are returned unwrapped so their message reaches the caller verbatim.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	log.Debug().
		Str("model", c.modelConcept).
		Int("prompt_length", len(prompt)).
		Msg("Generating image prompt")

	if c.llmConcept == nil {
		return "", errConceptModelUnavailable
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, c.llmConcept, prompt)
	if err != nil {
		log.Error().Err(err).Str("model", c.modelConcept).Msg("Gemini concept generation failed")
		return "", err
	}

	logGeminiResponse("GenerateText", response)
	return response, nil
}
