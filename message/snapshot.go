package message

import (
	"bytes"
	"net/http"
)

// Snapshot is the exported, serializable form of a Response. It is used by
// caches that need to store responses outside the process.
type Snapshot struct {
	Status int         `json:"status"`
	Reason string      `json:"reason,omitempty"`
	Proto  string      `json:"proto,omitempty"`
	Header http.Header `json:"header,omitempty"`
	Body   []byte      `json:"body,omitempty"`
}

// Snapshot returns a detached copy of r.
func (r Response) Snapshot() Snapshot {
	return Snapshot{
		Status: r.status,
		Reason: r.reason,
		Proto:  r.proto,
		Header: r.header.Clone(),
		Body:   bytes.Clone(r.body),
	}
}

// FromSnapshot rebuilds a Response from s.
func FromSnapshot(s Snapshot) Response {
	return Response{
		status: s.Status,
		reason: s.Reason,
		proto:  s.Proto,
		header: s.Header.Clone(),
		body:   bytes.Clone(s.Body),
	}
}
