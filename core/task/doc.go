// Package task defines the declarative descriptors aitask dispatches.
//
// Each operation has a Kind, a request type, and a fluent builder:
//
//	audio, err := task.NewSpeech("Hello").
//		Model(task.Ref(ai.ProviderOpenAI, "tts-1")).
//		Voice("alloy").
//		Persist(true).
//		Execute(ctx, dispatcher)
//
// Setters record the first invalid argument and Build reports it as an
// *InputError, so caller mistakes never reach the dispatcher. A builder is
// consumed by its first Execute or Stream call; the context passed there is
// the call's cancellation handle.
//
// Provider-specific settings travel in the Options bag, a map of typed
// Values. Options are flattened to strings only when a history record is
// written, and opaque values are dropped at that point.
package task
