// Package respond writes a finished pipeline response onto a transport.
//
// A Responder may be used once. Calling it again after output has started
// returns [ErrTransportCommitted]; the response already on the wire cannot be
// rewritten, so callers must surface that error rather than try to answer
// with another response.
package respond

import (
	"errors"

	"github.com/Keksclan/goRawrQueue/message"
)

// ErrTransportCommitted reports that output had already begun when a
// response was about to be written.
var ErrTransportCommitted = errors.New("respond: transport already committed")

// Responder writes a response to its underlying transport.
type Responder interface {
	Respond(resp message.Response) error
}
