// Package dwlog centralizes logging the way Dire Wolf's textcolor.c
// did: a small set of categories (info, error, received, decoded,
// transmitted, debug). Here each category is a *log.Logger from
// github.com/charmbracelet/log told apart by its prefix; the color name
// passed to newLogger is not applied, so categories share one style.
package dwlog

import (
	"os"

	"github.com/charmbracelet/log"
)

var (
	Info    = newLogger("INFO", log.InfoLevel, "white")
	Error   = newLogger("ERROR", log.ErrorLevel, "red")
	Rec     = newLogger("REC", log.InfoLevel, "green")
	Decoded = newLogger("DECODED", log.InfoLevel, "blue")
	Xmit    = newLogger("XMIT", log.InfoLevel, "magenta")
	Debug   = newLogger("DEBUG", log.DebugLevel, "green")
)

func newLogger(prefix string, level log.Level, _color string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	l.SetLevel(level)
	return l
}

// SetDebug turns on debug-level output across every category, mirroring
// the teacher's single global "-d" verbosity knob.
func SetDebug(on bool) {
	lvl := log.InfoLevel
	if on {
		lvl = log.DebugLevel
	}
	for _, l := range []*log.Logger{Info, Error, Rec, Decoded, Xmit, Debug} {
		l.SetLevel(lvl)
	}
}
