package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/core/executor"
	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/internal/utils"
	"github.com/leofalp/aitask/providers/ai"
)

// newTestExecutor points an executor at handler.
func newTestExecutor(t *testing.T, handler http.HandlerFunc) *Executor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(WithAPIKey("test-key"), WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func decodeBody(t *testing.T, r *http.Request, out any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		t.Errorf("decode request body: %v", err)
	}
}

// ========== Configuration ==========

// TestNew_Defaults verifies environment configuration and the default base URL.
func TestNew_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_API_BASE_URL", "")

	e := New()
	if e.apiKey != "env-key" {
		t.Errorf("expected key from env, got %q", e.apiKey)
	}
	if e.baseURL != defaultBaseURL {
		t.Errorf("expected default base URL, got %q", e.baseURL)
	}
	if e.Provider() != ai.ProviderOpenAI {
		t.Errorf("expected openai provider, got %s", e.Provider())
	}
	if New(WithAPIKey("opt")).apiKey != "opt" {
		t.Error("expected the option to override the env key")
	}
}

// TestExecutor_NoAPIKey verifies that calls fail before any request and
// streams are terminated.
func TestExecutor_NoAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	e := New()

	if _, err := e.Chat(context.Background(), task.ChatRequest{}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	h := stream.NewHandler()
	if err := e.CompleteStream(context.Background(), task.CompletionRequest{Prompt: "x"}, h); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if !h.Terminated() {
		t.Error("expected the handler to be terminated")
	}
}

// ========== Chat ==========

// TestExecutor_Chat verifies the request conversion and response mapping.
func TestExecutor_Chat(t *testing.T) {
	var got chatCompletionRequest
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != chatCompletionsEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		decodeBody(t, r, &got)
		fmt.Fprint(w, `{
			"id": "cmpl-1", "model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
				"role": "assistant", "content": "hi",
				"tool_calls": [{"id": "c1", "type": "function", "function": {"name": "lookup", "arguments": "{\"q\":1}"}}]
			}}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7, "prompt_tokens_details": {"cached_tokens": 1}}
		}`)
	})

	image, err := content.FromBytes("cat.png", "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	resp, err := e.Chat(context.Background(), task.ChatRequest{
		System:    "be brief",
		Messages:  []task.Message{{Role: ai.RoleUser, Text: "what is this", Attachments: []content.Content{image}}},
		Tools:     []task.Tool{{Name: "lookup", Parameters: json.RawMessage(`{"type":"object"}`)}},
		MaxTokens: 50,
		Reasoning: &task.ReasoningOptions{Effort: "low"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Model != DefaultChatModel || len(got.Messages) != 2 {
		t.Fatalf("unexpected request: %+v", got)
	}
	parts, ok := got.Messages[1].Content.([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("expected two content parts, got %#v", got.Messages[1].Content)
	}
	imagePart := parts[1].(map[string]any)["image_url"].(map[string]any)
	if url := imagePart["url"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("unexpected image url %q", url)
	}
	if got.MaxCompletionTokens == nil || *got.MaxCompletionTokens != 50 || got.ReasoningEffort != "low" {
		t.Errorf("unexpected options: %+v", got)
	}
	if len(got.Tools) != 1 || got.Tools[0].Function.Name != "lookup" {
		t.Errorf("unexpected tools: %+v", got.Tools)
	}

	if resp.Content != "hi" || resp.FinishReason != "tool_calls" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Function.Arguments != `{"q":1}` {
		t.Errorf("unexpected tool calls: %+v", resp.ToolCalls)
	}
	if resp.Usage.TotalTokens != 7 || resp.Usage.CachedTokens != 1 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

// TestExecutor_ChatErrors verifies that API errors and empty choices fail.
func TestExecutor_ChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"status", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			if _, err := e.Complete(context.Background(), task.CompletionRequest{Prompt: "x"}); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

// TestExecutor_ChatStatusError verifies the status error is reachable.
func TestExecutor_ChatStatusError(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := e.Complete(context.Background(), task.CompletionRequest{Prompt: "x"})
	var statusErr *utils.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected a 429 status error, got %v", err)
	}
}

// ========== Streaming ==========

// TestExecutor_ChatStream verifies SSE chunks become ordered deltas, tool
// calls and usage.
func TestExecutor_ChatStream(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		var body chatCompletionRequest
		decodeBody(t, r, &body)
		if body.Stream == nil || !*body.Stream || body.StreamOptions == nil || !body.StreamOptions.IncludeUsage {
			t.Errorf("expected stream flags, got %+v", body)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"lo\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"c1\",\"function\":{\"name\":\"f\",\"arguments\":\"{\\\"a\\\":\"}}]}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"1}\"}}]},\"finish_reason\":\"tool_calls\"}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[],\"usage\":{\"prompt_tokens\":3,\"completion_tokens\":4,\"total_tokens\":7}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	h := stream.NewHandler()
	var deltas []string
	var calls []ai.ToolCall
	_ = h.OnText(func(delta string) { deltas = append(deltas, delta) })
	_ = h.OnToolCall(func(call ai.ToolCall) { calls = append(calls, call) })

	err := e.ChatStream(context.Background(), task.ChatRequest{Messages: []task.Message{{Role: ai.RoleUser, Text: "hi"}}}, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(deltas, "") != "Hello" || len(deltas) != 2 {
		t.Errorf("unexpected deltas: %q", deltas)
	}
	if len(calls) != 1 || calls[0].Function.Arguments != `{"a":1}` {
		t.Errorf("unexpected tool calls: %+v", calls)
	}
	resp, herr := h.Result()
	if herr != nil {
		t.Fatalf("unexpected handler error: %v", herr)
	}
	if resp.FinishReason != "tool_calls" || resp.Usage == nil || resp.Usage.TotalTokens != 7 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

// TestExecutor_StreamMalformedChunk verifies that a bad chunk ends the
// stream with an error terminal.
func TestExecutor_StreamMalformedChunk(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {not json\n\n")
	})
	h := stream.NewHandler()
	err := e.CompleteStream(context.Background(), task.CompletionRequest{Prompt: "x"}, h)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, herr := h.Result(); herr == nil {
		t.Error("expected the handler to carry the error")
	}
}

// TestChunkToStreamEvents verifies event extraction from single chunks.
func TestChunkToStreamEvents(t *testing.T) {
	text := "x"
	empty := ""
	stop := "stop"

	tests := []struct {
		name  string
		chunk chatCompletionStreamChunk
		want  []ai.StreamEventType
	}{
		{"empty", chatCompletionStreamChunk{}, nil},
		{"content", chatCompletionStreamChunk{Choices: []streamChoice{{Delta: streamDelta{Content: &text}}}}, []ai.StreamEventType{ai.StreamEventContent}},
		{"empty content skipped", chatCompletionStreamChunk{Choices: []streamChoice{{Delta: streamDelta{Content: &empty}}}}, nil},
		{"reasoning and done", chatCompletionStreamChunk{Choices: []streamChoice{{Delta: streamDelta{Reasoning: &text}, FinishReason: &stop}}}, []ai.StreamEventType{ai.StreamEventReasoning, ai.StreamEventDone}},
		{"usage first", chatCompletionStreamChunk{Usage: &chatUsage{TotalTokens: 1}, Choices: []streamChoice{{Delta: streamDelta{Content: &text}}}}, []ai.StreamEventType{ai.StreamEventUsage, ai.StreamEventContent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := chunkToStreamEvents(&tt.chunk)
			if len(events) != len(tt.want) {
				t.Fatalf("expected %d events, got %d", len(tt.want), len(events))
			}
			for i, event := range events {
				if event.Type != tt.want[i] {
					t.Errorf("event %d: expected %s, got %s", i, tt.want[i], event.Type)
				}
			}
		})
	}
}

// ========== Media ==========

// TestExecutor_CreateImage verifies decoding and numbered output files.
func TestExecutor_CreateImage(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		var body imageRequest
		decodeBody(t, r, &body)
		if body.N != 2 || body.ResponseFormat != "b64_json" {
			t.Errorf("unexpected request: %+v", body)
		}
		fmt.Fprintf(w, `{"data":[{"b64_json":%q,"revised_prompt":"a red fox"},{"b64_json":%q}]}`, encoded, encoded)
	})

	path := filepath.Join(t.TempDir(), "OpenAI_image.png")
	res, err := e.CreateImage(context.Background(), task.ImageRequest{
		Common: task.Common{Count: 2, OutputPath: path, OutputMime: "image/png"},
		Prompt: "fox",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Images) != 2 || res.Usage.Images != 2 || res.RevisedPrompt != "a red fox" {
		t.Fatalf("unexpected result: %+v", res)
	}
	second := filepath.Join(filepath.Dir(path), "OpenAI_image_2.png")
	if res.Images[1].Path() != second {
		t.Errorf("expected %s, got %s", second, res.Images[1].Path())
	}
	for _, p := range []string{path, second} {
		data, err := os.ReadFile(p)
		if err != nil || string(data) != "png-bytes" {
			t.Errorf("unexpected file %s: %q %v", p, data, err)
		}
	}
}

// TestExecutor_Speech verifies the request format and the written file.
func TestExecutor_Speech(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		var body speechRequest
		decodeBody(t, r, &body)
		if body.Input != "Hello" || body.Voice != DefaultVoice || body.ResponseFormat != "wav" {
			t.Errorf("unexpected request: %+v", body)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF"))
	})

	path := filepath.Join(t.TempDir(), "OpenAI_tts.wav")
	res, err := e.Speech(context.Background(), task.SpeechRequest{
		Common: task.Common{OutputPath: path, OutputMime: "audio/wav"},
		Prompt: "Hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Audio.Path() != path || res.Usage.Characters != 5 {
		t.Errorf("unexpected result: %+v", res)
	}
	if data, _ := os.ReadFile(path); string(data) != "RIFF" {
		t.Errorf("unexpected file content %q", data)
	}
}

// TestExecutor_Transcribe verifies the multipart upload and response.
func TestExecutor_Transcribe(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != transcriptionsEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("model") != DefaultTranscribeModel || r.FormValue("language") != "it" {
			t.Errorf("unexpected fields: %v", r.MultipartForm.Value)
		}
		file, header, err := r.FormFile("file")
		if err == nil {
			data, _ := io.ReadAll(file)
			_ = file.Close()
			if header.Filename != "clip.mp3" || string(data) != "mp3" {
				t.Errorf("unexpected upload %q %q", header.Filename, data)
			}
		}
		fmt.Fprint(w, `{"text":"ciao","language":"italian","duration":1.5}`)
	})

	audio, _ := content.FromBytes("clip.mp3", "audio/mpeg", []byte("mp3"))
	res, err := e.Transcribe(context.Background(), task.TranscriptRequest{Audio: audio, Language: "it"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "ciao" || res.Duration != 1.5 || res.Usage.Seconds != 1.5 {
		t.Errorf("unexpected result: %+v", res)
	}
}

// TestExecutor_ListModels verifies kind inference and filtering.
func TestExecutor_ListModels(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != modelsEndpoint {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"data":[{"id":"gpt-4o","owned_by":"openai"},{"id":"tts-1"},{"id":"whisper-1"},{"id":"dall-e-3"},{"id":"babbage-002"}]}`)
	})

	all, err := e.ListModels(context.Background(), task.ListModelsRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected 5 models, got %d", len(all))
	}
	speech, err := e.ListModels(context.Background(), task.ListModelsRequest{Filter: task.KindSpeech})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(speech) != 1 || speech[0].ID != "tts-1" {
		t.Errorf("unexpected speech models: %+v", speech)
	}
}

// TestExecutor_Unsupported verifies kinds the API does not serve.
func TestExecutor_Unsupported(t *testing.T) {
	_, err := New(WithAPIKey("k")).SoundEffect(context.Background(), task.SoundEffectRequest{Prompt: "rain"})
	if !errors.Is(err, executor.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

// TestHelpers verifies the small format helpers.
func TestHelpers(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{speechFormat("audio/mpeg"), "mp3"},
		{speechFormat("AUDIO/WAV"), "wav"},
		{speechFormat("video/mp4"), ""},
		{mimeTypeToAudioFormat("audio/mpeg"), "mp3"},
		{mimeTypeToAudioFormat(""), "wav"},
		{mimeTypeToAudioFormat("audio/flac"), "flac"},
		{numbered("/out/a.png", 0), "/out/a.png"},
		{numbered("/out/a.png", 2), "/out/a_3.png"},
		{numbered("", 3), ""},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got)
		}
	}
}
