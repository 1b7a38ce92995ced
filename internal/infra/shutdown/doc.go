// Package shutdown coordinates process termination for zpipe.
//
// A Handler turns SIGINT/SIGTERM into context cancellation and then
// runs registered cleanup hooks in reverse order under a deadline:
//
//	h := shutdown.NewHandler(5*time.Second, log)
//	ctx := h.Context(context.Background())
//	h.OnShutdown("socket", func(context.Context) error { return sock.Close() })
//	defer h.Run()
package shutdown
