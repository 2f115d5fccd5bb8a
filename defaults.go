package gorawrqueue

// DefaultOptions returns the recommended set of options for production use:
// request ids and access logging. Panic containment is always on.
func DefaultOptions() []Option {
	return []Option{
		WithRequestID(),
		WithAccessLog(nil),
	}
}
