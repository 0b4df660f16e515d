package openai

import (
	"cmp"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/internal/utils"
	"github.com/leofalp/aitask/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

type chatCompletionRequest struct {
	Model               string         `json:"model"`
	Messages            []chatMessage  `json:"messages"`
	Temperature         *float64       `json:"temperature,omitempty"`
	MaxCompletionTokens *int           `json:"max_completion_tokens,omitempty"`
	Stop                []string       `json:"stop,omitempty"`
	N                   int            `json:"n,omitempty"`
	User                string         `json:"user,omitempty"`
	Stream              *bool          `json:"stream,omitempty"`
	StreamOptions       *streamOptions `json:"stream_options,omitempty"`

	Tools           []chatTool         `json:"tools,omitempty"`
	ReasoningEffort string             `json:"reasoning_effort,omitempty"`
	WebSearch       *webSearchOptions  `json:"web_search_options,omitempty"`
	Modalities      []string           `json:"modalities,omitempty"`
	Audio           *chatAudioSettings `json:"audio,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content,omitempty"` // string or []contentPart
}

// contentPart is a multimodal message part.
type contentPart struct {
	Type       string            `json:"type"`
	Text       string            `json:"text,omitempty"`
	ImageURL   *contentPartImage `json:"image_url,omitempty"`
	InputAudio *contentPartAudio `json:"input_audio,omitempty"`
}

type contentPartImage struct {
	URL string `json:"url"`
}

type contentPartAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

type chatTool struct {
	Type     string       `json:"type"` // "function"
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type webSearchOptions struct {
	SearchContextSize string `json:"search_context_size,omitempty"`
}

type chatAudioSettings struct {
	Voice  string `json:"voice"`
	Format string `json:"format"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "tool_calls", "content_filter"
}

type chatResponseMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
	Refusal   string         `json:"refusal,omitempty"`
	Reasoning string         `json:"reasoning,omitempty"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatUsage struct {
	PromptTokens            int `json:"prompt_tokens"`
	CompletionTokens        int `json:"completion_tokens"`
	TotalTokens             int `json:"total_tokens"`
	CompletionTokensDetails *struct {
		ReasoningTokens int `json:"reasoning_tokens,omitempty"`
	} `json:"completion_tokens_details,omitempty"`
	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens,omitempty"`
	} `json:"prompt_tokens_details,omitempty"`
}

func (u *chatUsage) toGeneric() *ai.Usage {
	if u == nil {
		return nil
	}
	usage := &ai.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if u.CompletionTokensDetails != nil {
		usage.ReasoningTokens = u.CompletionTokensDetails.ReasoningTokens
	}
	if u.PromptTokensDetails != nil {
		usage.CachedTokens = u.PromptTokensDetails.CachedTokens
	}
	return usage
}

/*
	OPERATIONS
*/

func (e *Executor) Complete(ctx context.Context, req task.CompletionRequest) (*ai.ChatResponse, error) {
	body := completionToChat(req)
	if err := e.prepare(ctx, req.Kind(), body.Model); err != nil {
		return nil, err
	}
	return e.sendChat(ctx, body)
}

func (e *Executor) Chat(ctx context.Context, req task.ChatRequest) (*ai.ChatResponse, error) {
	body, err := chatToChat(req)
	if err != nil {
		return nil, err
	}
	if err := e.prepare(ctx, req.Kind(), body.Model); err != nil {
		return nil, err
	}
	return e.sendChat(ctx, body)
}

func (e *Executor) sendChat(ctx context.Context, body chatCompletionRequest) (*ai.ChatResponse, error) {
	_, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, e.client, e.baseURL+chatCompletionsEndpoint, e.apiKey, body)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completions: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: chat completions: no choices in response")
	}
	return responseToGeneric(resp), nil
}

/*
	CONVERSION FUNCTIONS
*/

func completionToChat(req task.CompletionRequest) chatCompletionRequest {
	body := chatCompletionRequest{
		Model:       modelOr(req.Common, DefaultChatModel),
		Temperature: req.Temperature,
		Stop:        req.Stop,
		User:        req.Sender,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: string(ai.RoleSystem), Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: string(ai.RoleUser), Content: req.Prompt})
	if req.MaxTokens > 0 {
		body.MaxCompletionTokens = utils.Ptr(req.MaxTokens)
	}
	if req.Count > 1 {
		body.N = req.Count
	}
	return body
}

func chatToChat(req task.ChatRequest) (chatCompletionRequest, error) {
	body := chatCompletionRequest{
		Model:       modelOr(req.Common, DefaultChatModel),
		Temperature: req.Temperature,
		User:        req.Sender,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: string(ai.RoleSystem), Content: req.System})
	}
	for _, msg := range req.Messages {
		converted, err := messageToChat(msg)
		if err != nil {
			return body, err
		}
		body.Messages = append(body.Messages, converted)
	}
	for _, tool := range req.Tools {
		body.Tools = append(body.Tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	if req.MaxTokens > 0 {
		body.MaxCompletionTokens = utils.Ptr(req.MaxTokens)
	}
	if req.Count > 1 {
		body.N = req.Count
	}
	if req.Reasoning != nil {
		body.ReasoningEffort = req.Reasoning.Effort
	}
	if req.WebSearch != nil {
		body.WebSearch = &webSearchOptions{SearchContextSize: req.WebSearch.ContextSize}
	}
	if req.SpeechOutput != nil {
		body.Modalities = []string{"text", "audio"}
		body.Audio = &chatAudioSettings{
			Voice:  cmp.Or(req.SpeechOutput.Voice, DefaultVoice),
			Format: cmp.Or(req.SpeechOutput.Format, "mp3"),
		}
	}
	return body, nil
}

// messageToChat keeps plain text messages as strings and switches to content
// parts when attachments are present.
func messageToChat(msg task.Message) (chatMessage, error) {
	if len(msg.Attachments) == 0 {
		return chatMessage{Role: string(msg.Role), Content: msg.Text}, nil
	}

	var parts []contentPart
	if msg.Text != "" {
		parts = append(parts, contentPart{Type: "text", Text: msg.Text})
	}
	for _, attachment := range msg.Attachments {
		part, err := attachmentPart(attachment)
		if err != nil {
			return chatMessage{}, err
		}
		parts = append(parts, part)
	}
	return chatMessage{Role: string(msg.Role), Content: parts}, nil
}

func attachmentPart(c content.Content) (contentPart, error) {
	if text, ok := c.(content.Text); ok {
		return contentPart{Type: "text", Text: text.Value}, nil
	}
	data, err := c.Bytes()
	if err != nil {
		return contentPart{}, fmt.Errorf("openai: read attachment %s: %w", c.Name(), err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)

	switch c.Type() {
	case ai.ModalityImage:
		return contentPart{Type: "image_url", ImageURL: &contentPartImage{URL: buildDataURL(c.MimeType(), encoded)}}, nil
	case ai.ModalityAudio:
		return contentPart{Type: "input_audio", InputAudio: &contentPartAudio{Data: encoded, Format: mimeTypeToAudioFormat(c.MimeType())}}, nil
	}
	return contentPart{}, fmt.Errorf("openai: unsupported attachment type %s", c.Type())
}

// buildDataURL formats base64 data into a data URL for image inputs.
func buildDataURL(mimeType, data string) string {
	return "data:" + mimeType + ";base64," + data
}

// mimeTypeToAudioFormat converts a MIME type into the expected OpenAI audio
// format. Defaults to "wav" when the format is unknown.
func mimeTypeToAudioFormat(mimeType string) string {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "audio/")
	switch format {
	case "":
		return "wav"
	case "mpeg":
		return "mp3"
	}
	return format
}

func responseToGeneric(resp *chatCompletionResponse) *ai.ChatResponse {
	choice := resp.Choices[0]
	out := &ai.ChatResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage:        resp.Usage.toGeneric(),
		Refusal:      choice.Message.Refusal,
		Reasoning:    choice.Message.Reasoning,
	}
	for _, call := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
			ID:   call.ID,
			Type: "function",
			Function: ai.ToolCallFunction{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		})
	}
	return out
}
