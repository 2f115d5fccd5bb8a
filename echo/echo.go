// Package echo provides terminal middleware for health checks and demos.
// Each one answers the request itself and never delegates, so anything
// queued after it does not run.
package echo

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/Keksclan/goRawrQueue/contextx"
	"github.com/Keksclan/goRawrQueue/message"
	"github.com/Keksclan/goRawrQueue/pipeline"
)

// Reply is the JSON body written by [JSON] and [Fun].
type Reply struct {
	Message        string `json:"message"`
	Method         string `json:"method"`
	Path           string `json:"path"`
	RequestID      string `json:"request_id,omitempty"`
	ServerTimeUnix int64  `json:"server_time_unix"`
}

// Static always answers with status and body as plain text.
func Static(status int, body string) pipeline.Middleware {
	resp := message.Text(status, body)
	return pipeline.Named("echo", pipeline.MiddlewareFunc(func(*http.Request, pipeline.Continuation) (message.Response, error) {
		return resp, nil
	}))
}

// JSON answers with a [Reply] carrying msg.
func JSON(msg string) pipeline.Middleware {
	return pipeline.Named("echo", pipeline.MiddlewareFunc(func(req *http.Request, _ pipeline.Continuation) (message.Response, error) {
		return reply(req, msg)
	}))
}

var funMessages = []string{
	"Queue power!",
	"Next in line, please!",
	"Dequeued and delighted!",
	"First in, first out, first rate!",
	"No cutting in line!",
}

// Fun is like JSON but one reply in five swaps msg for a fun message. src
// may be nil, in which case a time-seeded source is used.
func Fun(msg string, src rand.Source) pipeline.Middleware {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	var (
		mu  sync.Mutex
		rng = rand.New(src)
	)
	return pipeline.Named("echo", pipeline.MiddlewareFunc(func(req *http.Request, _ pipeline.Continuation) (message.Response, error) {
		m := msg
		mu.Lock()
		if rng.Intn(5) == 0 {
			m = funMessages[rng.Intn(len(funMessages))]
		}
		mu.Unlock()
		return reply(req, m)
	}))
}

func reply(req *http.Request, msg string) (message.Response, error) {
	body, err := json.Marshal(Reply{
		Message:        msg,
		Method:         req.Method,
		Path:           req.URL.Path,
		RequestID:      contextx.RequestIDFromContext(req.Context()),
		ServerTimeUnix: time.Now().Unix(),
	})
	if err != nil {
		return message.Response{}, err
	}
	// The body is specific to this request.
	return message.New(http.StatusOK, body).
		WithHeader("Content-Type", "application/json").
		WithHeader("Cache-Control", "no-store"), nil
}
