// Package logging provides structured logging for smrelease runs.
//
// Logs are JSON lines produced by log/slog. Child loggers carry persistent
// attributes so every entry of a build cycle can be correlated:
//
//	logger, err := logging.NewLogger(dir, "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithRun(runID).WithRelease("acme", "web", "1.2.3")
//	log.WithArtifact("app.js").Info("artifact uploaded", "remote_name", "~/app.js")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"artifact uploaded","run_id":"...","release":{"org":"acme","project":"web","version":"1.2.3"},"artifact":"app.js","remote_name":"~/app.js"}
//
// All types in this package are safe for concurrent use; uploads log from
// many goroutines through the same underlying handler.
package logging
