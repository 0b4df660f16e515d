// Package stream routes incremental generation events from an executor back
// to caller callbacks.
//
// A Handler collects subscriptions for four event types: text deltas, tool
// calls, errors, and completion. Subscriptions are additive and close as soon
// as the first event is emitted (or Start is called). Every stream ends with
// exactly one terminal event, either Complete or Error, and later terminals
// are dropped.
//
// Callbacks may emit on the handler they are subscribed to. A text callback
// that calls Error ends the stream: the error is delivered after the callback
// returns and every later event is dropped.
//
// Executors that talk to an SSE-style transport produce an ai.ChatStream and
// hand it to Pump, which drives the iterator into the handler:
//
//	h := stream.NewHandler()
//	h.OnText(func(delta string) { fmt.Print(delta) })
//	resp, err := stream.Pump(ctx, chatStream, h)
//
// Pump checks ctx between events, so a cancelled call still ends with one
// terminal error that wraps context.Canceled.
package stream
