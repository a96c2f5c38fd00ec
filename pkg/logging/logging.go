// Package logging builds the structured loggers shared by all services.
package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a logger named after the service. Unknown levels fall back
// to info. Setting LOG_JSON=1 switches to JSON lines.
func New(service, level string) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       service,
		Level:      lvl,
		Output:     os.Stderr,
		JSONFormat: os.Getenv("LOG_JSON") == "1",
	})
}
