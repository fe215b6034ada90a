package tools

type ExtractAction struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

type KnowledgeAction struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type QuoteAction struct {
	Symbol string `json:"symbol"`
}

type MemoryAction struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type NoteAction struct {
	Content string `json:"content"`
}
