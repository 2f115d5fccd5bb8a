package interceptors

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
)

// app is a terminal middleware that counts its calls and remembers the last
// request it saw.
type app struct {
	status int
	body   string
	calls  atomic.Int32
	last   atomic.Pointer[http.Request]
}

func newApp(status int, body string) *app {
	return &app{status: status, body: body}
}

func (a *app) Process(req *http.Request, _ pipeline.Continuation) (message.Response, error) {
	a.calls.Add(1)
	a.last.Store(req)
	return message.Text(a.status, a.body), nil
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
