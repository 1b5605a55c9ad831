package observability

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging points the standard logger at stderr, plus a size-rotated file
// when path is set. The returned closer flushes the file on exit.
func SetupLogging(path string) io.Closer {
	log.SetFlags(log.LstdFlags)

	if path == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file
}
