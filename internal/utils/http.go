package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/leofalp/aitask/providers/observability"
)

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// maxBinaryBodySize bounds binary downloads such as synthesized audio.
const maxBinaryBodySize int64 = 100 * 1024 * 1024

// HeaderOption is an extra request header. It is applied after the defaults,
// so it can replace Authorization for vendors with custom auth headers.
type HeaderOption struct {
	Key   string
	Value string
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateString(e.Body, DefaultMaxStringLength))
}

// FilePart is a file field of a multipart request.
type FilePart struct {
	Field    string
	Filename string
	Data     []byte
}

// CloseWithLog closes c and logs a failure instead of returning it, for use
// in defers where a close error must not mask the primary error.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// DoPostSync performs a synchronous HTTP POST request with a JSON body and
// decodes the JSON response into OutputStruct.
//
// Error Handling Strategy:
//   - Context errors (timeout, cancellation) are propagated wrapped
//   - Non-2xx responses return a *StatusError with the body
//   - Response body close errors are logged but don't override primary errors
//   - JSON parsing errors include a response preview for debugging
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}
	req, err := newRequest(ctx, http.MethodPost, url, apiKey, bytes.NewReader(jsonBody), headers)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, respBody, err := send(ctx, client, req, len(jsonBody), maxResponseBodySize)
	if err != nil {
		return res, nil, err
	}
	return decode[OutputStruct](res, respBody)
}

// DoGet performs a GET request and decodes the JSON response.
func DoGet[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	req, err := newRequest(ctx, http.MethodGet, url, apiKey, nil, headers)
	if err != nil {
		return nil, nil, err
	}
	res, respBody, err := send(ctx, client, req, 0, maxResponseBodySize)
	if err != nil {
		return res, nil, err
	}
	return decode[OutputStruct](res, respBody)
}

// DoPostBinary posts a JSON body and returns the raw response bytes and
// their content type. Used by endpoints that answer with audio or images.
func DoPostBinary(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) ([]byte, string, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("error marshaling body: %w", err)
	}
	req, err := newRequest(ctx, http.MethodPost, url, apiKey, bytes.NewReader(jsonBody), headers)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, respBody, err := send(ctx, client, req, len(jsonBody), maxBinaryBodySize)
	if err != nil {
		return nil, "", err
	}
	return respBody, res.Header.Get("Content-Type"), nil
}

// DoPostMultipart posts form fields and files as multipart/form-data and
// decodes the JSON response.
func DoPostMultipart[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, fields map[string]string, files []FilePart, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating form file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, nil, fmt.Errorf("error writing form file %s: %w", file.Field, err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, nil, fmt.Errorf("error writing form field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, nil, fmt.Errorf("error closing multipart body: %w", err)
	}

	size := buf.Len()
	req, err := newRequest(ctx, http.MethodPost, url, apiKey, &buf, headers)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, respBody, err := send(ctx, client, req, size, maxResponseBodySize)
	if err != nil {
		return res, nil, err
	}
	return decode[OutputStruct](res, respBody)
}

func newRequest(ctx context.Context, method, url, apiKey string, body io.Reader, headers []HeaderOption) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}
	return req, nil
}

// send executes req and reads at most limit bytes of the body, recording
// span events when a span is present in ctx.
func send(ctx context.Context, client *http.Client, req *http.Request, bodySize int, limit int64) (*http.Response, []byte, error) {
	span := observability.SpanFromContext(ctx)
	if client == nil {
		client = http.DefaultClient
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequest,
			observability.String(observability.AttrHTTPMethod, req.Method),
			observability.String(observability.AttrHTTPURL, req.URL.String()),
			observability.Int(observability.AttrHTTPRequestBodySize, bodySize),
		)
	}

	requestStart := time.Now()
	res, err := client.Do(req)
	requestDuration := time.Since(requestStart)
	if err != nil {
		if span != nil {
			span.AddEvent(observability.EventHTTPError,
				observability.Error(err),
				observability.Duration(observability.AttrDuration, requestDuration),
			)
		}
		return res, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, limit))
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPResponse,
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration(observability.AttrDuration, requestDuration),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, &StatusError{StatusCode: res.StatusCode, Body: string(respBody)}
	}
	return res, respBody, nil
}

func decode[OutputStruct any](res *http.Response, body []byte) (*http.Response, *OutputStruct, error) {
	var out OutputStruct
	if err := json.Unmarshal(body, &out); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(body), DefaultMaxStringLength))
	}
	return res, &out, nil
}
