// Package executor defines the contract vendor integrations implement and the
// registry the dispatcher resolves them from.
//
// An Executor has one method per task kind. Integrations embed Unsupported
// and override only the kinds they serve; every other method reports an
// *UnsupportedError carrying the provider and kind:
//
//	type Speaker struct {
//		executor.Unsupported
//	}
//
//	func New() *Speaker {
//		return &Speaker{Unsupported: executor.Unsupported{ID: ai.ProviderElevenLabs}}
//	}
//
//	func (s *Speaker) Speech(ctx context.Context, req task.SpeechRequest) (*task.AudioResult, error) {
//		...
//	}
//
// A Registry maps provider ids to executors. It is filled at startup, one
// executor per provider, and read by the dispatcher afterwards. Lookups of an
// unregistered provider fail with *ConfigError, which callers can tell apart
// from ErrUnsupported with errors.Is.
package executor
