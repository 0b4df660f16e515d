// Package record turns a completed task into a serializable Record for the
// history store.
//
// A Record lists the task's inputs and outputs as typed Items (text keeps its
// value, media keeps name, mime type, path and size), the flattened option
// bag, usage counters, and an estimated cost. The From* functions build one
// per kind from the request, the executor result, and the Meta the
// dispatcher resolved:
//
//	rec, err := record.FromSpeech(record.Meta{
//		Provider: ai.ProviderOpenAI,
//		Model:    task.ModelRef{ID: "tts-1"},
//		Pricer:   models,
//	}, req, result)
//
// Records are built once through a Builder and never change afterwards.
package record
