// Package logger is the thin leveled front over the standard library log
// that the whole service writes through. Output goes to stdout for the
// container runtime to collect; timestamps are UTC with microseconds so
// gateway and webhook latencies line up across replicas.
package logger

import (
	"log"
	"os"
)

var debugEnabled bool

// Init configures process-wide logging. Debug lines (ignored webhook event
// types, cache chatter) stay off unless LOG_DEBUG is set.
func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.LUTC)
	debugEnabled = os.Getenv("LOG_DEBUG") != ""
}

func Infof(format string, v ...any) {
	log.Printf("[INFO] "+format, v...)
}

func Warnf(format string, v ...any) {
	log.Printf("[WARN] "+format, v...)
}

func Errorf(format string, v ...any) {
	log.Printf("[ERROR] "+format, v...)
}

func Debugf(format string, v ...any) {
	if !debugEnabled {
		return
	}
	log.Printf("[DEBUG] "+format, v...)
}

func Fatalf(format string, v ...any) {
	log.Fatalf("[FATAL] "+format, v...)
}
