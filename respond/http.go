package respond

import (
	"net/http"

	"github.com/Keksclan/goRawrQueue/message"
)

// committer is implemented by writers that know whether output has started,
// such as [Tracker].
type committer interface {
	Committed() bool
}

// HTTP writes responses through an http.ResponseWriter.
type HTTP struct {
	w         http.ResponseWriter
	committed bool
}

// NewHTTP returns a Responder for w. Wrap w in a [Tracker] first if other
// code may write to it directly.
func NewHTTP(w http.ResponseWriter) *HTTP {
	return &HTTP{w: w}
}

// Respond copies headers, writes the status code and the body.
func (h *HTTP) Respond(resp message.Response) error {
	if h.committed {
		return ErrTransportCommitted
	}
	if c, ok := h.w.(committer); ok && c.Committed() {
		return ErrTransportCommitted
	}
	h.committed = true

	dst := h.w.Header()
	for name, values := range resp.Header() {
		dst[name] = values
	}
	h.w.WriteHeader(resp.Status())
	_, err := h.w.Write(resp.Body())
	return err
}

// Tracker wraps an http.ResponseWriter and records whether the header has
// been written and how many body bytes went out.
type Tracker struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	bytes       int64
}

// NewTracker wraps w.
func NewTracker(w http.ResponseWriter) *Tracker {
	return &Tracker{ResponseWriter: w, status: http.StatusOK}
}

func (t *Tracker) WriteHeader(code int) {
	if !t.wroteHeader {
		t.status = code
		t.wroteHeader = true
		t.ResponseWriter.WriteHeader(code)
	}
}

func (t *Tracker) Write(b []byte) (int, error) {
	if !t.wroteHeader {
		t.WriteHeader(http.StatusOK)
	}
	n, err := t.ResponseWriter.Write(b)
	t.bytes += int64(n)
	return n, err
}

// Committed reports whether the status line has been sent, through t or
// by a wrapped writer that tracks it too.
func (t *Tracker) Committed() bool {
	if t.wroteHeader {
		return true
	}
	c, ok := t.ResponseWriter.(committer)
	return ok && c.Committed()
}

// Status returns the status code written, 200 if none was written yet.
func (t *Tracker) Status() int { return t.status }

// Bytes returns the number of body bytes written.
func (t *Tracker) Bytes() int64 { return t.bytes }

// Unwrap returns the original ResponseWriter.
func (t *Tracker) Unwrap() http.ResponseWriter { return t.ResponseWriter }
