package provider

import (
	"strings"

	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/internal/infrastructure/llm"
	"github.com/forgeapp/forge/pkg/logger"
)

// ResolvedModel is a model id bound to the client that serves it. Name is
// what gets sent to the vendor.
type ResolvedModel struct {
	ModelID   string
	Vendor    llm.Vendor
	Name      string
	Generator llm.Generator
}

// Adapter maps "vendor/name" model ids to vendor clients. The clients are
// built once and shared by every request.
type Adapter struct {
	generators map[llm.Vendor]llm.Generator
}

func NewAdapter(cfg config.ProviderConfig) *Adapter {
	logger.Info(logger.PROVIDER, "Initialising provider adapter (gateway: %t)", cfg.UsingGateway)

	return NewAdapterWithGenerators(map[llm.Vendor]llm.Generator{
		llm.VendorAnthropic: llm.NewClient(llm.VendorAnthropic, cfg.Anthropic),
		llm.VendorOpenAI:    llm.NewClient(llm.VendorOpenAI, cfg.OpenAI),
		llm.VendorGoogle:    llm.NewClient(llm.VendorGoogle, cfg.Google),
		llm.VendorGroq:      llm.NewClient(llm.VendorGroq, cfg.Groq),
	})
}

func NewAdapterWithGenerators(generators map[llm.Vendor]llm.Generator) *Adapter {
	return &Adapter{generators: generators}
}

// Route picks the vendor and vendor-side model name for modelID. Some
// "openai/" ids (gpt-oss) are served by Groq under their full name, and
// unrecognised prefixes fall through to Groq as well.
func Route(modelID string) (llm.Vendor, string) {
	switch {
	case strings.HasPrefix(modelID, "anthropic/"):
		return llm.VendorAnthropic, strings.TrimPrefix(modelID, "anthropic/")
	case strings.HasPrefix(modelID, "openai/"):
		if strings.Contains(modelID, "gpt-oss") {
			return llm.VendorGroq, modelID
		}
		return llm.VendorOpenAI, strings.TrimPrefix(modelID, "openai/")
	case strings.HasPrefix(modelID, "google/"):
		return llm.VendorGoogle, strings.TrimPrefix(modelID, "google/")
	default:
		return llm.VendorGroq, modelID
	}
}

// Resolve never fails.
func (a *Adapter) Resolve(modelID string) ResolvedModel {
	vendor, name := Route(modelID)

	logger.Debug(logger.PROVIDER, "Resolved model %s to %s/%s", modelID, vendor, name)

	return ResolvedModel{
		ModelID:   modelID,
		Vendor:    vendor,
		Name:      name,
		Generator: a.generators[vendor],
	}
}
