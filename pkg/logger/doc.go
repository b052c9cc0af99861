// Package logger builds *slog.Logger instances with functional options,
// attribute helpers with stable key names, and attributes injected from
// context.Context (for example the request id of the call being logged).
//
// # Usage
//
//	import "github.com/dmitrymomot/travio/pkg/logger"
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//
//	log, err := logger.NewFromConfig(cfg,
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	if err != nil {
//	    // bad LOG_LEVEL or LOG_FORMAT
//	}
//
//	log.DebugContext(ctx, "travio request",
//	    logger.Method("POST"),
//	    logger.Endpoint("booking/search"),
//	    logger.StatusCode(200),
//	)
//
// Helpers such as Error, UserID or CartID return an empty Attr for zero
// values, so they can be passed unconditionally.
package logger
