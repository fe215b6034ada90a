package tools

import (
	"context"
	"fmt"
	"log"

	"ConverseAI/app/utils"
)

// Presets
const (
	PresetWebResearch = "web_research"
	PresetMarketData  = "market_data"
	PresetAnalyst     = "analyst"
	Custom            = "custom"
)

// Tools
const (
	search_knowledge     = "search_knowledge"
	recall_memory        = "recall_memory"
	store_memory         = "store_memory"
	fetch_webpage        = "fetch_webpage"
	extract_text_content = "extract_text_content"
	extract_links_html   = "extract_links_html"
	stock_quote          = "stock_quote"
)

type Tool struct {
	Name        string                                          `json:"name"`
	Description string                                          `json:"description"`
	Parameters  Parameter                                       `json:"parameters"`
	HandlerFunc func(context.Context, ToolTask) (string, error) `json:"-"`
}

type Parameter struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

type ToolTask struct {
	Key        string         `json:"key"`
	Parameters map[string]any `json:"parameters"`
}

var presetTools = map[string][]string{
	PresetWebResearch: {fetch_webpage, extract_text_content, extract_links_html},
	PresetMarketData:  {stock_quote},
	PresetAnalyst:     {fetch_webpage, extract_text_content, extract_links_html, stock_quote},
}

// NewToolkitFromPreset resolves a preset name into the registered tools it
// names. Unknown presets yield an empty toolkit.
func NewToolkitFromPreset(preset string) map[string]Tool {
	names, ok := presetTools[preset]
	if !ok {
		return map[string]Tool{}
	}
	toolkit := make(map[string]Tool, len(names))
	for _, name := range names {
		if tool, exists := GetTool(name); exists {
			toolkit[name] = tool
		}
	}
	return toolkit
}

func withParsed[T any](p map[string]any, key string, fn func(T) (string, error)) (string, error) {
	parsed, err := utils.CastAny[T](p)
	if err != nil {
		log.Printf("❌ Invalid parameters for %s: %v", key, err)
		return "", fmt.Errorf("invalid parameters for %s: %w", key, err)
	}
	return fn(*parsed)
}
