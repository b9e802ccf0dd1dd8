// Package xlog is a thin wrapper around glog, used throughout the pipeline
// instead of calling glog directly so pass/verifier logging goes through one
// place that can prefix messages with the emitting pass's name.
package xlog

import "github.com/golang/glog"

// traceLevel gates Tracef output at -v=2, the level mtail's vm package
// reserves for per-instruction codegen traces.
const traceLevel glog.Level = 2

func Infof(format string, args ...interface{}) { glog.Infof(format, args...) }

func Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }

func Errorf(format string, args ...interface{}) { glog.Errorf(format, args...) }

// Tracef logs a trace line (compiler.Pipeline's per-stage decl count),
// gated behind -v=2 so a default run stays quiet.
func Tracef(format string, args ...interface{}) {
	if glog.V(traceLevel) {
		glog.Infof(format, args...)
	}
}

// Flush flushes buffered log entries; call it before the process exits so
// crash diagnostics are not lost.
func Flush() { glog.Flush() }
