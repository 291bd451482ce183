// Package log provides the logging port used by every wsclient component.
//
// Components accept a Logger and never reach for a global. Two
// implementations ship with the module: a zerolog adapter for real output
// and a no-op logger for tests and embedders that do not want output.
//
// # Usage
//
//	logger := log.NewZerologAdapter()
//	connLogger := log.With(logger, log.String("conn_id", id))
//	connLogger.Info("transport open", log.String("address", addr))
//
// # Custom Loggers
//
// Implement the Logger interface to route records into an existing
// logging setup:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
