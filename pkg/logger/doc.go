// Package logger builds *slog.Logger values in one consistent way and keeps
// attribute keys uniform across packages.
//
// New takes functional options: output format (text or json), level, static
// attributes, environment presets (WithDevelopment, WithProduction) and
// ContextExtractor callbacks that pull values out of the context passed to
// the *Context logging methods. Config maps LOG_LEVEL and LOG_FORMAT onto the
// same options and can be loaded with pkg/config.
//
// The helpers in attr.go (Component, QueueID, TaskID, LoopID, Pending, Count,
// Duration, Error, Errors, Group) return slog.Attr values. Error and Errors
// return an empty Attr for nil errors, so
//
//	log.Debug("drain pass finished", logger.Count(n), logger.Error(err))
//
// needs no nil check.
//
//	log := logger.New(
//	    logger.WithDevelopment("scheduler"),
//	    logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	logger.SetAsDefault(log)
package logger
