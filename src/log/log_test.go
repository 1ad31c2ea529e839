package log_test

import (
	"testing"

	"github.com/go-logr/logr"

	"corpora/src/log"
)

func TestUseProduction(t *testing.T) {
	before := log.Logger()
	defer log.SetLogger(before)

	if err := log.UseProduction(); err != nil {
		t.Fatalf("UseProduction() error = %v", err)
	}
	if log.Logger() == (logr.Logger{}) {
		t.Fatal("Logger() is zero after UseProduction()")
	}

	// The swapped-in logger must accept the package helpers.
	log.Info("production logger active", "check", true)
	log.Error(nil, "error path accepts nil error")
}

func TestSetLoggerRoundTrip(t *testing.T) {
	before := log.Logger()
	defer log.SetLogger(before)

	replacement := logr.Discard()
	log.SetLogger(replacement)
	if log.Logger() != replacement {
		t.Error("Logger() did not return the logger passed to SetLogger()")
	}
}
