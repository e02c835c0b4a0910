// Package logging builds the process logger from configuration.
//
// # Overview
//
// Polaris logs through Go's standard log/slog package. This package owns
// the one place configuration meets slog: it turns a LoggingConfig into a
// handler (JSON or text, level-filtered, optional source locations). The
// run command installs the result as slog.Default; packages then take
// component-scoped children:
//
//	logger, err := logging.New(&cfg.Telemetry.Logging, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	recorderLog := slog.Default().With("component", "audit-recorder")
//
// # Secrets
//
// Redaction is not a logging concern here: values are scrubbed before they
// reach a log call. Provider error bodies are redacted in pkg/providers and
// audit rows are scrubbed in pkg/audit, so the logger never sees a secret
// it would need to strip.
package logging
