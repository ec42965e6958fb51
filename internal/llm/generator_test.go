package llm

import (
	"testing"

	"github.com/openai/openai-go"
)

func TestNewGenerator_Defaults(t *testing.T) {
	g := NewGenerator(&openai.Client{}, "", 0)
	if g.model != openai.ChatModelGPT4o {
		t.Errorf("Expected default model %s, got %s", openai.ChatModelGPT4o, g.model)
	}
	if g.temperature != DefaultTemperature {
		t.Errorf("Expected default temperature %v, got %v", DefaultTemperature, g.temperature)
	}
}

func TestNewGenerator_Overrides(t *testing.T) {
	g := NewGenerator(&openai.Client{}, "gpt-4o-mini", 0.7)
	if g.model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", g.model)
	}
	if g.temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", g.temperature)
	}
}
