package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Client talks to one vendor through its OpenAI-compatible chat completions
// endpoint. Instances are built once at start-up and never mutated.
type Client struct {
	vendor       Vendor
	baseURL      string
	includeUsage bool
	client       *openai.Client
}

var _ Generator = (*Client)(nil)

func NewClient(vendor Vendor, cfg config.VendorConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	logger.Info(logger.PROVIDER, "Initialising %s client at %s", vendor, clientConfig.BaseURL)

	return &Client{
		vendor:  vendor,
		baseURL: clientConfig.BaseURL,
		// only OpenAI proper is known to honour stream_options
		includeUsage: vendor == VendorOpenAI && cfg.BaseURL == "",
		client:       openai.NewClientWithConfig(clientConfig),
	}
}

func (c *Client) Vendor() Vendor {
	return c.vendor
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) StreamText(ctx context.Context, req Request) (Stream, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   true,
	}
	if req.Temperature != nil {
		chatReq.Temperature = wireFloat(*req.Temperature)
	}
	if req.TopP != nil {
		chatReq.TopP = wireFloat(*req.TopP)
	}
	if req.MaxTokens != nil {
		chatReq.MaxTokens = *req.MaxTokens
	}
	if req.FrequencyPenalty != nil {
		chatReq.FrequencyPenalty = wireFloat(*req.FrequencyPenalty)
	}
	if req.PresencePenalty != nil {
		chatReq.PresencePenalty = wireFloat(*req.PresencePenalty)
	}
	if len(req.Stop) > 0 {
		chatReq.Stop = req.Stop
	}
	if c.includeUsage {
		chatReq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}

	logger.Debug(logger.PROVIDER, "Opening %s stream for model %s with %d messages", c.vendor, req.Model, len(messages))

	stream, err := c.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.vendor, err)
	}

	return &chatStream{vendor: c.vendor, stream: stream}, nil
}

// wireFloat keeps an explicit zero on the wire. go-openai omits zero-valued
// sampling fields, which would let the vendor default win instead.
func wireFloat(v float64) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(v)
}

type chatStream struct {
	vendor       Vendor
	stream       *openai.ChatCompletionStream
	usage        *Usage
	finishReason string
}

func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", s.vendor, err)
		}

		if resp.Usage != nil {
			s.usage = &Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			}
		}

		if len(resp.Choices) == 0 {
			continue
		}

		choice := resp.Choices[0]
		if choice.FinishReason != "" {
			s.finishReason = string(choice.FinishReason)
		}
		if choice.Delta.Content != "" {
			return choice.Delta.Content, nil
		}
	}
}

func (s *chatStream) Usage() *Usage {
	return s.usage
}

func (s *chatStream) FinishReason() string {
	return s.finishReason
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}
