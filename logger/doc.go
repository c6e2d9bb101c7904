// Package logger provides structured logging using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("collection")
//	log.Info("view created", logger.Fields("stages", 3))
package logger
