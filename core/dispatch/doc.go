// Package dispatch routes built task requests to provider executors.
//
// A Dispatcher implements task.Runner. Every call resolves a provider (the
// model reference, then the request's provider, then the model catalog, then
// the per-kind default from settings), looks up the executor in the
// registry, resolves the output destination for media kinds, invokes the
// executor and, on success, appends a history record:
//
//	registry := executor.NewRegistry()
//	registry.Register(echo.New())
//
//	d := dispatch.New(registry,
//		dispatch.WithSettings(cfg),
//		dispatch.WithHistory(inmemory.New()),
//	)
//	resp, err := task.NewCompletion("Hello").Execute(ctx, d)
//
// Resolution failures are returned as *executor.ConfigError before any
// executor runs. Executor errors are returned unchanged and never produce a
// record. A history store that rejects a record is logged, not returned: the
// caller already has the result.
package dispatch
