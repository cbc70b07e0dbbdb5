package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Runtime is the minimal interface the answer service needs from a
// chat-completion backend. *Client implements it; tests substitute fakes.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers accepted by the `provider` config key.
const (
	ProviderGroq       = "groq"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

const (
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	OpenAIBaseURL     = "https://api.openai.com/v1"
)

// ProviderPreset describes an OpenAI-compatible endpoint.
type ProviderPreset struct {
	Name         string
	BaseURL      string
	DefaultModel string
}

var providers = map[string]ProviderPreset{
	ProviderGroq:       {Name: ProviderGroq, BaseURL: GroqBaseURL, DefaultModel: "llama-3.1-8b-instant"},
	ProviderOpenRouter: {Name: ProviderOpenRouter, BaseURL: OpenRouterBaseURL, DefaultModel: "meta-llama/llama-3.1-8b-instruct"},
	ProviderOpenAI:     {Name: ProviderOpenAI, BaseURL: OpenAIBaseURL, DefaultModel: "gpt-4o-mini"},
}

// LookupProvider returns the preset for a provider name (case-insensitive).
func LookupProvider(name string) (ProviderPreset, bool) {
	p, ok := providers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Providers lists the known provider names in sorted order.
func Providers() []string {
	out := make([]string, 0, len(providers))
	for k := range providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ResolveBaseURL picks the endpoint root: an explicit override wins, otherwise
// the provider preset. An empty provider means groq.
func ResolveBaseURL(provider, override string) (string, error) {
	if o := strings.TrimSpace(override); o != "" {
		return strings.TrimRight(o, "/"), nil
	}
	if strings.TrimSpace(provider) == "" {
		provider = ProviderGroq
	}
	p, ok := LookupProvider(provider)
	if !ok {
		return "", &ConfigurationError{
			Field:  "provider",
			Reason: fmt.Sprintf("unknown provider %q (known: %s)", provider, strings.Join(Providers(), ", ")),
		}
	}
	return p.BaseURL, nil
}
