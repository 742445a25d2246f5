package logger

import (
	"log"
	"os"
)

// New returns the process logger. All components take *log.Logger so the
// composition root decides the sink.
func New() *log.Logger {
	return log.New(os.Stdout, "", log.LstdFlags)
}
