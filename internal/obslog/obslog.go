// Package obslog provides the structured logger shared by every build
// stage, wrapping logrus the way lazydocker's pkg/log wraps it for its
// own components, but shaped as a small Helper interface so packages
// depend on a handful of leveled printf methods rather than on logrus
// directly.
package obslog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Helper is the logging surface every build-pipeline package takes
// instead of a concrete logger, mirroring the teacher's log.Helper shape
// (Debugf/Warnf/Errorf).
type Helper interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Helper
}

type entry struct {
	*logrus.Entry
}

func (e entry) Debugf(format string, args ...interface{}) { e.Entry.Debugf(format, args...) }
func (e entry) Infof(format string, args ...interface{})  { e.Entry.Infof(format, args...) }
func (e entry) Warnf(format string, args ...interface{})  { e.Entry.Warnf(format, args...) }
func (e entry) Errorf(format string, args ...interface{}) { e.Entry.Errorf(format, args...) }
func (e entry) WithField(key string, value interface{}) Helper {
	return entry{e.Entry.WithField(key, value)}
}

// New returns a logger writing JSON lines to w at the given level. A nil
// w defaults to stderr.
func New(level logrus.Level, w io.Writer) Helper {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{})
	return entry{logrus.NewEntry(l)}
}

// Discard returns a Helper that drops every message, for tests and
// library callers that don't want build-stage logging.
func Discard() Helper {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return entry{logrus.NewEntry(l)}
}
