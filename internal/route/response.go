package route

import (
	"encoding/json"
	"errors"
	"net/http"
)

// LocalRequestID is the Locals key holding the request identifier.
const LocalRequestID = "requestId"

// ErrAlreadyWritten is returned by JSON when the response has already been sent.
var ErrAlreadyWritten = errors.New("response already written")

// Locals is response-local storage shared by the steps of one request.
type Locals map[string]any

// String returns the value under key if it is a string.
func (l Locals) String(key string) string {
	s, _ := l[key].(string)
	return s
}

// Response is the outbound response as seen by route steps.
type Response struct {
	w      *trackingWriter
	status int
	Locals Locals
}

// NewResponse wraps w.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{
		w:      &trackingWriter{ResponseWriter: w},
		Locals: Locals{},
	}
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	return r.w.Header()
}

// Status sets the status code used by the next JSON call.
func (r *Response) Status(code int) *Response {
	r.status = code
	return r
}

// StatusCode returns the status that was sent, or will be sent. It defaults
// to 200.
func (r *Response) StatusCode() int {
	if r.w.wroteHeader {
		return r.w.status
	}
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// JSON encodes v and sends it with the current status.
func (r *Response) JSON(v any) error {
	if r.w.wroteHeader {
		return ErrAlreadyWritten
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.w.Header().Set("Content-Type", "application/json")
	r.w.WriteHeader(r.StatusCode())
	_, err = r.w.Write(append(data, '\n'))
	return err
}

// Written reports whether a status line has been sent.
func (r *Response) Written() bool {
	return r.w.wroteHeader
}

// Writer exposes the underlying writer for steps that stream or adapt
// net/http middleware. Writes through it are tracked by Written.
func (r *Response) Writer() http.ResponseWriter {
	return r.w
}

// RequestID returns Locals["requestId"], or "" when unset.
func (r *Response) RequestID() string {
	return r.Locals.String(LocalRequestID)
}

// trackingWriter records whether the header has been written.
type trackingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (tw *trackingWriter) WriteHeader(code int) {
	if !tw.wroteHeader {
		tw.status = code
		tw.wroteHeader = true
	}
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *trackingWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher for streaming support.
func (tw *trackingWriter) Flush() {
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
