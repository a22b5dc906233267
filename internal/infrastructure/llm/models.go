package llm

import "context"

// Vendor names a family of inference endpoints.
type Vendor string

const (
	VendorAnthropic Vendor = "anthropic"
	VendorOpenAI    Vendor = "openai"
	VendorGoogle    Vendor = "google"
	VendorGroq      Vendor = "groq"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Request is a vendor-neutral text generation call. Nil parameters are left
// to the vendor's defaults.
type Request struct {
	Model            string
	Messages         []Message
	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Stop             []string
}

// Usage is token accounting for one call. Estimated is set when the vendor
// did not report usage and the counts were computed locally.
type Usage struct {
	PromptTokens     int  `json:"promptTokens"`
	CompletionTokens int  `json:"completionTokens"`
	TotalTokens      int  `json:"totalTokens"`
	Estimated        bool `json:"estimated,omitempty"`
}

// Stream yields text fragments until Recv returns io.EOF. Usage and
// FinishReason are meaningful once the stream is exhausted.
type Stream interface {
	Recv() (string, error)
	Usage() *Usage
	FinishReason() string
	Close() error
}

// Generator opens streaming text generation calls.
type Generator interface {
	StreamText(ctx context.Context, req Request) (Stream, error)
}
