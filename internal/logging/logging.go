// Package logging configures the structured logger shared by all
// openapi-manager components.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates the process logger. Verbose enables debug output (also
// reachable via OPENAPI_MANAGER_DEBUG=1). Logs go to stderr so stdout
// stays clean for JSON reports and completion scripts.
func New(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if verbose || os.Getenv("OPENAPI_MANAGER_DEBUG") == "1" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
