package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// ChatMessage represents a chat message with role and content
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request payload for Claude models in AWS Bedrock format.
// Temperature is serialized unconditionally so the deterministic zero setting
// reaches the model instead of falling back to the provider default.
type chatRequest struct {
	Messages         []ChatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature"`
	AnthropicVersion string        `json:"anthropic_version"`
	System           string        `json:"system,omitempty"`
}

type chatResponse struct {
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Client generates chat completions through AWS Bedrock
type Client struct {
	client    *bedrockruntime.Client
	modelID   string
	maxTokens int
}

// NewClient creates a Bedrock chat client for the given model
func NewClient(awsConfig aws.Config, modelID string, maxTokens int) *Client {
	if modelID == "" {
		modelID = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Client{
		client:    bedrockruntime.NewFromConfig(awsConfig),
		modelID:   modelID,
		maxTokens: maxTokens,
	}
}

// Complete sends the conversation to the model and returns its textual reply
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty")
	}

	var systemPrompts []string
	sanitized := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		switch strings.ToLower(msg.Role) {
		case "system":
			systemPrompts = append(systemPrompts, msg.Content)
		default:
			sanitized = append(sanitized, msg)
		}
	}
	if len(sanitized) == 0 {
		return "", fmt.Errorf("chat messages must include at least one user or assistant message")
	}

	request := chatRequest{
		Messages:         sanitized,
		MaxTokens:        c.maxTokens,
		Temperature:      0,
		AnthropicVersion: "bedrock-2023-05-31",
	}
	if len(systemPrompts) > 0 {
		request.System = strings.Join(systemPrompts, "\n\n")
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	}

	result, err := c.client.InvokeModel(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to invoke bedrock model: %w", err)
	}

	var response chatResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, content := range response.Content {
		if content.Type == "" || content.Type == "text" {
			sb.WriteString(content.Text)
		}
	}

	return sb.String(), nil
}

// ModelID returns the configured model identifier
func (c *Client) ModelID() string { return c.modelID }
