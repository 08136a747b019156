// Package logging provides structured logging utilities built on log/slog.
//
// The worker logs one human-readable status line per sync stage, so the text
// handler is the default; JSON output is available for log shippers.
//
//	logger := logging.New(logging.FormatFromEnv())
//	ctx = logging.WithLogger(ctx, logger.With(slog.String("run_id", runID)))
//	logging.FromContext(ctx).Info("downloaded OFAC SDN xml")
package logging
