package hexagon

import (
	"io"

	"github.com/sirupsen/logrus"
)

// log is the package-level structured logger (SPEC_FULL.md §2.2). It
// defaults to discarding output so importing this package never prints
// to a library caller's stderr uninvited — only cmd/hvxopt rewires it
// with SetOutput, the way moby/moby's daemon tests configure a package
// logrus.Logger for the scope of a single test (logrus.SetLevel).
var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetOutput redirects package logging to w at the given level. Exported
// for cmd/hvxopt; library callers that embed this package in a larger
// service are expected to do the same from their own wiring.
func SetOutput(w io.Writer, level logrus.Level) {
	log.SetOutput(w)
	log.SetLevel(level)
}
