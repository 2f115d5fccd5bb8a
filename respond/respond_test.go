package respond

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Keksclan/goRawrQueue/message"
)

func TestWireWritesStatusHeadersBody(t *testing.T) {
	var buf bytes.Buffer
	resp := message.Text(http.StatusNotFound, "missing").WithAddedHeader("X-Trace", "a").WithAddedHeader("X-Trace", "b")

	if err := NewWire(&buf).Respond(resp); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	want := "HTTP/1.1 404 Not Found\r\n" +
		"Content-Length: 7\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"X-Trace: a, b\r\n" +
		"\r\n" +
		"missing"
	if buf.String() != want {
		t.Fatalf("wire output mismatch:\ngot  %q\nwant %q", buf.String(), want)
	}
}

func TestWireSecondRespondIsCommitted(t *testing.T) {
	var buf bytes.Buffer
	w := NewWire(&buf)
	if err := w.Respond(message.Response{}); err != nil {
		t.Fatalf("first Respond: %v", err)
	}
	n := buf.Len()

	err := w.Respond(message.Text(500, "again"))
	if !errors.Is(err, ErrTransportCommitted) {
		t.Fatalf("expected ErrTransportCommitted, got %v", err)
	}
	if buf.Len() != n {
		t.Fatal("committed responder must not write again")
	}
}

func TestHTTPResponder(t *testing.T) {
	rec := httptest.NewRecorder()
	resp := message.Text(http.StatusCreated, "made").WithHeader("X-User", "alice")

	if err := NewHTTP(rec).Respond(resp); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d", rec.Code)
	}
	if rec.Header().Get("X-User") != "alice" {
		t.Fatalf("header: got %q", rec.Header().Get("X-User"))
	}
	if rec.Body.String() != "made" {
		t.Fatalf("body: got %q", rec.Body.String())
	}
}

func TestHTTPResponderDetectsEarlierWrite(t *testing.T) {
	tr := NewTracker(httptest.NewRecorder())
	_, _ = tr.Write([]byte("early"))

	err := NewHTTP(tr).Respond(message.Response{})
	if !errors.Is(err, ErrTransportCommitted) {
		t.Fatalf("expected ErrTransportCommitted, got %v", err)
	}
}

func TestTrackerRecordsStatusAndBytes(t *testing.T) {
	tr := NewTracker(httptest.NewRecorder())
	if tr.Committed() {
		t.Fatal("fresh tracker must not be committed")
	}
	tr.WriteHeader(http.StatusAccepted)
	tr.WriteHeader(http.StatusInternalServerError)
	_, _ = tr.Write([]byte("abc"))

	if tr.Status() != http.StatusAccepted {
		t.Fatalf("status: got %d", tr.Status())
	}
	if tr.Bytes() != 3 {
		t.Fatalf("bytes: got %d", tr.Bytes())
	}
}
