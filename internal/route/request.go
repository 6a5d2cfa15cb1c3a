package route

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// maxBodyBytes caps how much of a request body NewRequest decodes.
const maxBodyBytes = 1 << 20

// Request is the inbound request as seen by route steps.
type Request struct {
	// HTTP is the underlying request. Its Body can be read again after
	// NewRequest has consumed it.
	HTTP *http.Request

	Method string
	// URL is the request URI (path and raw query).
	URL string
	// Headers has lower-cased keys; repeated headers are joined with ", ".
	Headers map[string]string
	Query   url.Values
	// Body holds the decoded JSON body, the raw text of a non-JSON body,
	// or nil when the request has none or it exceeds maxBodyBytes.
	Body any
}

// NewRequest builds a Request from r, reading and decoding its body.
func NewRequest(r *http.Request) *Request {
	req := &Request{
		HTTP:    r,
		Method:  r.Method,
		URL:     r.URL.RequestURI(),
		Headers: flattenHeaders(r),
		Query:   r.URL.Query(),
	}
	req.Body = readBody(r)
	return req
}

// Context returns the underlying request's context.
func (r *Request) Context() context.Context {
	if r.HTTP == nil {
		return context.Background()
	}
	return r.HTTP.Context()
}

func flattenHeaders(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Header)+1)
	for k, vs := range r.Header {
		out[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	if r.Host != "" {
		out["host"] = r.Host
	}
	return out
}

func readBody(r *http.Request) any {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if len(raw) > maxBodyBytes {
		// Too large to decode. The unread rest stays behind the bytes
		// already consumed, so steps still see the whole body.
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(raw), r.Body), r.Body}
		return nil
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if isJSON(r.Header.Get("Content-Type")) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
