package respond

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/Keksclan/goRawrQueue/message"
)

// Wire writes responses in raw HTTP/1.x form to an io.Writer, e.g. a
// hijacked connection.
type Wire struct {
	w         io.Writer
	committed bool
}

// NewWire returns a Responder writing to w.
func NewWire(w io.Writer) *Wire {
	return &Wire{w: w}
}

// Respond writes the status line, one line per header and the raw body.
// A Content-Length header is added when the response does not carry one.
func (wr *Wire) Respond(resp message.Response) error {
	if wr.committed {
		return ErrTransportCommitted
	}
	wr.committed = true

	if resp.HeaderLine("Content-Length") == "" && resp.HeaderLine("Transfer-Encoding") == "" {
		resp = resp.WithHeader("Content-Length", strconv.Itoa(resp.Len()))
	}

	bw := bufio.NewWriter(wr.w)
	fmt.Fprintf(bw, "HTTP/%s %d %s\r\n", resp.ProtocolVersion(), resp.Status(), resp.Reason())
	for _, name := range resp.HeaderNames() {
		fmt.Fprintf(bw, "%s: %s\r\n", name, resp.HeaderLine(name))
	}
	_, _ = bw.WriteString("\r\n")
	_, _ = bw.Write(resp.Body())
	return bw.Flush()
}

// Committed reports whether output has started.
func (wr *Wire) Committed() bool {
	return wr.committed
}
