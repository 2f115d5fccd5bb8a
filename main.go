// Package gorawrqueue serves HTTP through a queue-driven middleware
// pipeline. A [Server] assembles built-in middleware (request ids, tracing,
// access logs, metrics, IP blocking, rate limiting, authentication, circuit
// breaking, response caching) and user middleware into a priority-ordered
// list, and every request is dispatched through a fresh
// [pipeline.Handler] built from it.
//
//	srv, err := gorawrqueue.NewServer(
//		gorawrqueue.WithRequestID(),
//		gorawrqueue.WithRateLimitGlobal(500, 100),
//		gorawrqueue.WithAuth(auth.StaticTokens(tokens)),
//		gorawrqueue.WithTerminal(echo.JSON("pong")),
//	)
//	http.ListenAndServe(":8080", srv)
package gorawrqueue
