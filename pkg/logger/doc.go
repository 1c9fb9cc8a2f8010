// Package logger builds *slog.Logger instances for the service.
//
// New applies functional options on top of production defaults (JSON, info
// level, stdout). The text format is rendered by tint and is colored only when
// the output is a terminal. Every handler is wrapped with LogHandlerDecorator,
// which pulls request scoped attributes such as the request id out of the
// context on each Handle call.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Parse(cfg.Env), "vortis"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "subscription synced", logger.SubscriptionID(id))
//
// Attribute helpers in attr.go keep key names consistent across packages.
package logger
