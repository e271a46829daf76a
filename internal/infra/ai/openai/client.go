package openai

import (
    "context"
    "fmt"
    "strings"

    "github.com/msetiadi/leadintel/internal/infra/ai/prompt"
    "github.com/sashabaranov/go-openai"
)

const defaultMaxTokens = 2048

type Client struct {
    *openai.Client
    model       string
    temperature float32
    maxTokens   int
}

type Options struct {
    APIKey      string
    BaseURL     string // optional, for OpenAI-compatible endpoints
    Model       string
    Temperature float32
    MaxTokens   int
}

func NewClient(opts Options) *Client {
    cfg := openai.DefaultConfig(opts.APIKey)
    if opts.BaseURL != "" {
        cfg.BaseURL = opts.BaseURL
    }
    model := opts.Model
    if model == "" {
        model = "gpt-4o-mini"
    }
    maxTokens := opts.MaxTokens
    if maxTokens <= 0 {
        maxTokens = defaultMaxTokens
    }
    temperature := opts.Temperature
    if temperature <= 0 {
        // factual-extraction bias: near-deterministic completions
        temperature = 0.2
    }
    return &Client{
        Client:      openai.NewClientWithConfig(cfg),
        model:       model,
        temperature: temperature,
        maxTokens:   maxTokens,
    }
}

// Model reports the active model identifier, used by the health probe.
func (c *Client) Model() string { return c.model }

// Generate submits the lead content with the extraction system prompt and
// requests a JSON-mode completion.
func (c *Client) Generate(ctx context.Context, text string) (string, error) {
    req := openai.ChatCompletionRequest{
        Model:       c.model,
        Temperature: c.temperature,
        ResponseFormat: &openai.ChatCompletionResponseFormat{
            Type: openai.ChatCompletionResponseFormatTypeJSONObject,
        },
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
            {Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(text)},
        },
    }
    // For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
    if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "o4") || strings.HasPrefix(c.model, "gpt-5") {
        req.MaxCompletionTokens = c.maxTokens
    } else {
        req.MaxTokens = c.maxTokens
    }

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        return "", fmt.Errorf("failed to create chat completion: %w", err)
    }
    if len(resp.Choices) == 0 {
        return "", nil
    }
    return resp.Choices[0].Message.Content, nil
}
