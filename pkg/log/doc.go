// Package log provides the structured logging abstraction used by msgsend.
//
// Components accept a Logger and never a concrete logging library, so an
// embedding application can route messages into its own logger. A zerolog
// adapter and a no-op logger are provided.
//
//	logger := log.NewConsoleLogger(os.Stderr, zerolog.InfoLevel)
//	logger.Info("message sent", log.String("call_id", id), log.Int("status", 200))
package log
