package tools

import (
	"context"

	"ConverseAI/app/rag"
)

// KnowledgeTools returns the RAG-backed search tool bound to a client and
// collection. Retrieval failures degrade to the no-context sentinel so an
// agent run in flight is never aborted by a backend hiccup.
func KnowledgeTools(ragClient rag.Interface, collection string) []Tool {
	return []Tool{
		{
			Name:        search_knowledge,
			Description: "Search the personal knowledge base for documents relevant to a query.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "What to look for in the knowledge base.",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of documents to return. Defaults to 3.",
					},
				},
				Required: []string{"query"},
			},
			HandlerFunc: func(ctx context.Context, task ToolTask) (string, error) {
				return withParsed[KnowledgeAction](task.Parameters, search_knowledge, func(a KnowledgeAction) (string, error) {
					limit := a.Limit
					if limit <= 0 {
						limit = 3
					}
					return ragClient.ContextForQuery(ctx, a.Query, collection, limit), nil
				})
			},
		},
	}
}
