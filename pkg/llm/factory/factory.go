package factory

import (
	"fmt"

	"ai-permit-planner-be/pkg/llm"
	"ai-permit-planner-be/pkg/llm/huggingface"
	"ai-permit-planner-be/pkg/llm/ollama"
)

const (
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"
)

// NewLLMProvider builds the backend named by providerType. apiKey is only
// used by hosted backends.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case ProviderOllama:
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case ProviderHuggingFace:
		if apiKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an api key")
		}
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
