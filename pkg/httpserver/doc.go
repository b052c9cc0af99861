// Package httpserver runs the gateway's HTTP listener with configurable
// timeouts and graceful shutdown, and provides a JSON health handler.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns when ctx is cancelled; pair it with signal.NotifyContext.
// Listener failures wrap ErrStart and drain failures wrap ErrShutdown.
package httpserver
