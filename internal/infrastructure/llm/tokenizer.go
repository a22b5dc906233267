package llm

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codec     tokenizer.Codec
	codecOnce sync.Once
	codecErr  error
)

// cl100k_base is close enough for every vendor we route to.
func getCodec() (tokenizer.Codec, error) {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	return codec, codecErr
}

// EstimateTokens returns an approximate token count for text, or 0 if the
// codec is unavailable.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	c, err := getCodec()
	if err != nil {
		return 0
	}

	ids, _, err := c.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}

// EstimateUsage builds a Usage from the prompt messages and the completion
// text for vendors that do not report it.
func EstimateUsage(messages []Message, completion string) *Usage {
	prompt := 0
	for _, msg := range messages {
		prompt += EstimateTokens(msg.Content)
	}
	completionTokens := EstimateTokens(completion)

	return &Usage{
		PromptTokens:     prompt,
		CompletionTokens: completionTokens,
		TotalTokens:      prompt + completionTokens,
		Estimated:        true,
	}
}
