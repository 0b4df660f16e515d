// Package openai is the executor for the OpenAI API and compatible
// endpoints (OpenRouter, Ollama, vLLM) reached through a custom base URL.
//
// It serves completion and chat through /chat/completions, with native SSE
// streaming, image generation through /images/generations, speech through
// /audio/speech, transcript and translation through the /audio endpoints, and
// model listing through /models. Other kinds report executor.ErrUnsupported.
//
// Configuration comes from OPENAI_API_KEY and OPENAI_API_BASE_URL unless set
// with options:
//
//	exec := openai.New(openai.WithAPIKey(key))
//	registry.Register(exec)
//
// An executor for a compatible vendor is registered under its own id:
//
//	registry.RegisterAs(ai.ProviderOpenRouter, openai.New(
//		openai.WithBaseURL("https://openrouter.ai/api/v1"),
//		openai.WithAPIKey(os.Getenv("OPENROUTER_API_KEY")),
//	))
package openai
