// Package shutdown coordinates graceful process termination.
//
// Components register hooks with OnShutdown; Wait blocks until SIGINT,
// SIGTERM, Trigger or context cancellation, then runs the hooks in
// reverse registration order under a shared timeout.
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	h.OnShutdown(func(context.Context) error { return engine.Close() })
//	err := h.Wait(ctx)
package shutdown
