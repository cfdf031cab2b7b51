// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) for the sync CLI.
//
// # Context Awareness
//
// Every log line emitted while a schedule table is being processed carries the
// table name. The WithTable helper attaches the table field once so all rows,
// retries and provider calls for that table can be correlated in the output.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync started")
//
//	// While processing one table:
//	l := logger.WithTable(log, "fall-schedule")
//	l.Warn("Row skipped", zap.Int("row", 7))
package logger
