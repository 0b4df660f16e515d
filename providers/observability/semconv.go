package observability

// --- Task Attributes ---

const (
	// AttrTaskKind is the task kind name (e.g., "speech", "chat")
	AttrTaskKind = "aitask.kind"

	// AttrTaskSender is the caller tag carried by the descriptor
	AttrTaskSender = "aitask.sender"

	// AttrTaskStreaming marks calls made through a streaming operation
	AttrTaskStreaming = "aitask.streaming"

	// AttrOutputPath is the resolved output file for media kinds
	AttrOutputPath = "aitask.output.path"

	// AttrOutputMime is the requested output mime type
	AttrOutputMime = "aitask.output.mime"
)

// --- Provider Attributes ---

const (
	// AttrProvider is the resolved provider identifier (e.g., "openai")
	AttrProvider = "aitask.provider"

	// AttrProviderSource tells how the provider was chosen: "model",
	// "request", "catalog" or "default"
	AttrProviderSource = "aitask.provider.source"

	// AttrModel is the model identifier sent to the executor
	AttrModel = "aitask.model"

	// AttrFinishReason is the reason a text generation finished
	AttrFinishReason = "aitask.finish_reason"
)

// --- Usage Attributes ---

const (
	// AttrTokensPrompt is the number of prompt tokens
	AttrTokensPrompt = "aitask.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrTokensCompletion is the number of completion tokens
	AttrTokensCompletion = "aitask.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrCostUSD is the estimated cost of the call
	AttrCostUSD = "aitask.cost_usd"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (e.g., "POST")
	AttrHTTPMethod = "http.method"

	// AttrHTTPURL is the request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body_size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body_size"
)

// --- History Attributes ---

const (
	// AttrRecordID is the id of the record built for a call
	AttrRecordID = "aitask.record.id"

	// AttrHistoryTotal is the number of records held by an in-process store
	AttrHistoryTotal = "aitask.history.total"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanDispatchPrefix prefixes the per-kind dispatch span, e.g. "dispatch.speech"
	SpanDispatchPrefix = "dispatch."
)

// --- Event Names ---

const (
	// EventExecutorStart marks the hand-off to the executor
	EventExecutorStart = "executor.start"

	// EventExecutorEnd marks the executor's return
	EventExecutorEnd = "executor.end"

	// EventHTTPRequest marks a prepared outbound request
	EventHTTPRequest = "http.request.prepared"

	// EventHTTPResponse marks a received response
	EventHTTPResponse = "http.response.received"

	// EventHTTPError marks a transport failure
	EventHTTPError = "http.request.error"

	// EventHistoryAppend marks when a record is appended to history
	EventHistoryAppend = "history.append"

	// EventHistorySkipped marks a successful call that produced no record
	EventHistorySkipped = "history.skipped"
)

// --- Metric Names ---

const (
	// MetricDispatchCount is the counter for dispatched calls
	MetricDispatchCount = "aitask.dispatch.count"

	// MetricDispatchErrors is the counter for failed calls
	MetricDispatchErrors = "aitask.dispatch.errors"

	// MetricDispatchDuration is the histogram for call duration in seconds
	MetricDispatchDuration = "aitask.dispatch.duration"

	// MetricTokensTotal is the counter for total tokens reported by executors
	MetricTokensTotal = "aitask.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// MetricCostUSD is the histogram for estimated call cost
	MetricCostUSD = "aitask.cost_usd"

	// MetricHistoryAppendErrors is the counter for records the store rejected
	MetricHistoryAppendErrors = "aitask.history.append_errors"
)
