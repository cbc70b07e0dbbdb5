package ai

import (
	"encoding/json"
	"os"
	"sort"
)

// Model metadata used for context-window warnings.

type ModelInfo struct {
	Name          string
	Provider      string
	ContextTokens int // approximate context window
}

var models = map[string]ModelInfo{
	// Groq
	"llama-3.1-8b-instant":    {Name: "llama-3.1-8b-instant", Provider: ProviderGroq, ContextTokens: 131072},
	"llama-3.3-70b-versatile": {Name: "llama-3.3-70b-versatile", Provider: ProviderGroq, ContextTokens: 131072},
	"llama3-8b-8192":          {Name: "llama3-8b-8192", Provider: ProviderGroq, ContextTokens: 8192},
	"llama3-70b-8192":         {Name: "llama3-70b-8192", Provider: ProviderGroq, ContextTokens: 8192},
	"gemma2-9b-it":            {Name: "gemma2-9b-it", Provider: ProviderGroq, ContextTokens: 8192},
	// OpenRouter
	"meta-llama/llama-3.1-8b-instruct":  {Name: "meta-llama/llama-3.1-8b-instruct", Provider: ProviderOpenRouter, ContextTokens: 131072},
	"meta-llama/llama-3.1-70b-instruct": {Name: "meta-llama/llama-3.1-70b-instruct", Provider: ProviderOpenRouter, ContextTokens: 131072},
	"openai/gpt-4o-mini":                {Name: "openai/gpt-4o-mini", Provider: ProviderOpenRouter, ContextTokens: 128000},
	// OpenAI
	"gpt-4o-mini": {Name: "gpt-4o-mini", Provider: ProviderOpenAI, ContextTokens: 128000},
	"gpt-4o":      {Name: "gpt-4o", Provider: ProviderOpenAI, ContextTokens: 128000},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// ExceedsContext reports whether promptTokens overflow the model's window.
// Unknown models never exceed.
func ExceedsContext(model string, promptTokens int) bool {
	mi, ok := LookupModel(model)
	if !ok || mi.ContextTokens <= 0 {
		return false
	}
	return promptTokens > mi.ContextTokens
}

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example entry: { "my-model": {"Name":"my-model","Provider":"groq","ContextTokens":32768} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m map[string]ModelInfo
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	for k, v := range m {
		if v.Name == "" {
			v.Name = k
		}
		models[k] = v
	}
}

// Catalog returns the catalog entries sorted by provider, then name.
func Catalog() []ModelInfo {
	out := make([]ModelInfo, 0, len(models))
	for _, v := range models {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Name < out[j].Name
	})
	return out
}
