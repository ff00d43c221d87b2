// Package logger wraps zap for the manifest service:
//   - a global sugared logger with console or JSON encoding,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing and configuration,
//   - context-aware convenience functions (Infof, WarnKV, ...).
//
// Services receive a context and log through the logger stored in it, so
// request-scoped fields such as sw_package_id follow every message.
package logger
