package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"time"

	"ConverseAI/app/storage"
	"ConverseAI/app/tools"
	"ConverseAI/app/utils"
	"ConverseAI/app/utils/restclient"
)

const chatEndpoint = "/v1/chat/completions"

type Interface interface {
	Think(ctx context.Context, messages []Message, temp float64, maxTokens int) (string, error)
	Process(ctx context.Context, user string, messages []Message, toolkit map[string]tools.Tool) (string, error)
}

type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
}

var _ Interface = &LLMClient{}

type LLMClient struct {
	restClient *restclient.RestClient
	storage    storage.Interface
	model      string
}

func NewLLMClient(db storage.Interface, model string) *LLMClient {
	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:1234"
	}
	var headers map[string]string
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		headers = map[string]string{"Authorization": "Bearer " + key}
	}
	return &LLMClient{
		restClient: restclient.NewRestClient(baseURL, headers),
		storage:    db,
		model:      model,
	}
}

func (mc *LLMClient) Think(ctx context.Context, messages []Message, temp float64, maxTokens int) (string, error) {
	response, err := mc.generateResponse(ctx, messages, nil, temp, maxTokens)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("empty LLM response")
	}
	return response.Choices[0].Message.Content, nil
}

// Process runs one exchange with the model, executing any tool calls it makes
// and feeding the results back until the model answers in plain text.
func (mc *LLMClient) Process(ctx context.Context, user string, messages []Message, toolkit map[string]tools.Tool) (string, error) {
	response, err := mc.generateResponse(ctx, messages, toolkit, 0.2, -1)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("empty LLM response")
	}

	message := response.Choices[0].Message
	for i := 0; i < 5 && len(message.ToolCalls) > 0; i++ {
		newMessages := mc.handleToolCalls(ctx, user, toolkit, message.ToolCalls)
		messages = append(messages, newMessages...)
		if response, err = mc.generateResponse(ctx, messages, toolkit, 0.2, -1); err != nil {
			return "", err
		}
		if len(response.Choices) == 0 {
			return "", errors.New("empty LLM response")
		}
		message = response.Choices[0].Message
	}

	if mc.storage != nil {
		if err = mc.storage.SaveMemory(ctx, storage.Record{
			User:      user,
			Role:      "assistant",
			Content:   message.Content,
			CreatedAt: time.Now(),
		}); err != nil {
			log.Printf("⚠️ Error saving memory for user %s: %v", user, err)
		}
	}

	return message.Content, nil
}

func (mc *LLMClient) handleToolCalls(ctx context.Context, user string, toolkit map[string]tools.Tool,
	toolCalls []toolCall) (messages []Message) {
	messages = append(messages, Message{Role: "assistant", ToolCalls: toolCalls})

	for i, call := range toolCalls {
		log.Printf("▶️ Executing tool call %d: %s", i, call.Function.Name)
		toolTask := tools.ToolTask{Key: call.Function.Name}
		toolTask.Parameters, _ = utils.ParseArguments(call.Function.Arguments)
		tool, exists := toolkit[toolTask.Key]
		if !exists || tool.HandlerFunc == nil {
			log.Printf("⚠️ Tool not found or missing handler: %s", toolTask.Key)
			continue
		}

		result, err := tool.HandlerFunc(ctx, toolTask)
		if err != nil {
			log.Printf("⚠️ Tool %s execution failed: %v", tool.Name, err)
			result = err.Error()
		}

		if mc.storage != nil {
			if err = mc.storage.SaveMemory(ctx, storage.Record{
				User:       user,
				Role:       "tool",
				Tool:       tool.Name,
				Content:    result,
				Parameters: call.Function.Arguments,
				CreatedAt:  time.Now(),
			}); err != nil {
				log.Printf("⚠️ Error saving memory for tool %s: %v", tool.Name, err)
			}
		}

		messages = append(messages,
			Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			},
		)
	}

	return messages
}

func (mc *LLMClient) generateResponse(ctx context.Context, messages []Message, toolkit map[string]tools.Tool, temp float64, maxTokens int) (*ResponseLLM, error) {
	payload := requestPayload{
		Model:       mc.model,
		Tools:       functionsToPayload(toolkit),
		Messages:    messages,
		Temperature: temp,
		MaxTokens:   maxTokens,
	}

	return mc.sendRequestAndParse(ctx, payload, 3)
}

func functionsToPayload(functions map[string]tools.Tool) (payload []functionPayload) {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := functions[name]
		payload = append(payload, functionPayload{Type: "function", Function: t})
	}
	return payload
}

func (mc *LLMClient) sendRequestAndParse(ctx context.Context, payload requestPayload, maxRetries int) (*ResponseLLM, error) {
	var err error
	var response []byte
	var status int
	var generatedResponse ResponseLLM

	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			log.Println("🚨 Request canceled before execution")
			return nil, ctx.Err()
		default:
			if err != nil {
				time.Sleep(time.Duration(math.Pow(2, float64(i))) * 100 * time.Millisecond)
			}
			response, status, err = mc.restClient.Post(ctx, chatEndpoint, payload, nil)
			if err != nil {
				log.Printf("⚠️ Attempt %d failed: HTTP %d | Error: %v", i, status, err)
				continue
			}

			if err = json.Unmarshal(response, &generatedResponse); err != nil {
				log.Printf("⚠️ Error parsing response: %v", err)
				continue
			}

			return &generatedResponse, nil
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
}
