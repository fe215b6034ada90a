package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const maxFetchSize = 5 << 20

var httpClient = &http.Client{Timeout: 20 * time.Second}

func webTools() []Tool {
	return []Tool{
		{
			Name:        fetch_webpage,
			Description: "Fetch the raw HTML content of a web page by URL.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"url": map[string]any{
						"type":        "string",
						"description": "The http(s) URL to fetch.",
					},
				},
				Required: []string{"url"},
			},
			HandlerFunc: func(ctx context.Context, task ToolTask) (string, error) {
				return withParsed[ExtractAction](task.Parameters, fetch_webpage, func(a ExtractAction) (string, error) {
					return fetchWebpage(ctx, a)
				})
			},
		},
		{
			Name:        extract_text_content,
			Description: "Extract the visible text from an HTML document.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"html": map[string]any{
						"type":        "string",
						"description": "The HTML to extract text from.",
					},
				},
				Required: []string{"html"},
			},
			HandlerFunc: func(_ context.Context, task ToolTask) (string, error) {
				return withParsed[ExtractAction](task.Parameters, extract_text_content, extractTextContent)
			},
		},
		{
			Name:        extract_links_html,
			Description: "Extract all hyperlinks from an HTML document.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"html": map[string]any{
						"type":        "string",
						"description": "The HTML to extract links from.",
					},
				},
				Required: []string{"html"},
			},
			HandlerFunc: func(_ context.Context, task ToolTask) (string, error) {
				return withParsed[ExtractAction](task.Parameters, extract_links_html, extractLinks)
			},
		},
	}
}

func fetchWebpage(ctx context.Context, a ExtractAction) (string, error) {
	if a.URL == "" {
		return "", errors.New("invalid parameters: 'url' is required")
	}
	u, err := url.Parse(a.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid url: %s", a.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return "", err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Printf("❌ Error fetching URL content %s: %v\n", a.URL, err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("⚠️ URL %s returned status code: %d\n", a.URL, resp.StatusCode)
		return "", fmt.Errorf("failed to fetch URL content: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	limited := io.LimitReader(resp.Body, maxFetchSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		log.Printf("❌ Error reading content from URL %s: %v\n", a.URL, err)
		return "", err
	}

	return string(body), nil
}

func extractLinks(a ExtractAction) (string, error) {
	if strings.TrimSpace(a.HTML) == "" {
		return "", errors.New("invalid parameters: 'html' is required")
	}
	doc, err := parseHTML(a.HTML)
	if err != nil {
		return "", err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					links = append(links, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	log.Printf("✅ Successfully extracted %d links\n", len(links))
	return strings.Join(links, " "), nil
}

func extractTextContent(a ExtractAction) (string, error) {
	if strings.TrimSpace(a.HTML) == "" {
		return "", errors.New("invalid parameters: 'html' is required")
	}
	doc, err := parseHTML(a.HTML)
	if err != nil {
		return "", err
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	log.Printf("✅ Successfully extracted %d text blocks\n", len(parts))
	return strings.Join(parts, " "), nil
}

func parseHTML(s string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		log.Printf("❌ Error parsing HTML content: %v\n", err)
		return nil, err
	}
	return doc, nil
}
