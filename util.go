package pcfg

import "log"

// EnableDebugLogging gates the trace lines the parser's predict/scan/
// complete loop emits via debugf. Off by default; tests and
// cmd/earleydemo may turn it on when diagnosing a specific grammar.
var EnableDebugLogging bool

// debugf logs a trace line when EnableDebugLogging is set, matching the
// teacher's gEnableDebug-gated fmt.Println idiom but through the
// standard logger so call sites get consistent timestamps.
func debugf(format string, args ...interface{}) {
	if EnableDebugLogging {
		log.Printf(format, args...)
	}
}
