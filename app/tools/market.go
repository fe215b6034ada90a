package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

func quoteBaseURL() string {
	if v := os.Getenv("QUOTE_BASE_URL"); v != "" {
		return v
	}
	return "https://query1.finance.yahoo.com"
}

func marketTools() []Tool {
	return []Tool{
		{
			Name:        stock_quote,
			Description: "Look up the latest market price and currency for a stock ticker symbol.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"symbol": map[string]any{
						"type":        "string",
						"description": "Ticker symbol, e.g. NVDA or NFLX.",
					},
				},
				Required: []string{"symbol"},
			},
			HandlerFunc: func(ctx context.Context, task ToolTask) (string, error) {
				return withParsed[QuoteAction](task.Parameters, stock_quote, func(a QuoteAction) (string, error) {
					return stockQuote(ctx, a)
				})
			},
		},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func stockQuote(ctx context.Context, a QuoteAction) (string, error) {
	if a.Symbol == "" {
		return "", errors.New("invalid parameters: 'symbol' is required")
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s", quoteBaseURL(), a.Symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Printf("❌ Error fetching quote for %s: %v\n", a.Symbol, err)
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return "", err
	}

	var chart chartResponse
	if err = json.Unmarshal(body, &chart); err != nil {
		return "", fmt.Errorf("parse quote response: %w", err)
	}
	if chart.Chart.Error != nil {
		return "", fmt.Errorf("quote lookup failed: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return "", fmt.Errorf("no quote data for symbol %s", a.Symbol)
	}

	meta := chart.Chart.Result[0].Meta
	return fmt.Sprintf("%s: %.2f %s (previous close %.2f)",
		meta.Symbol, meta.RegularMarketPrice, meta.Currency, meta.PreviousClose), nil
}
