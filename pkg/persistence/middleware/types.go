package middleware

import "github.com/aretw0/fsmtrail/pkg/ports"

// Middleware allows wrapping an EventLog to add behavior.
type Middleware func(ports.EventLog) ports.EventLog

// Chain wraps log with mws. The first middleware is the outermost, so it
// sees records first on Append and last on Read.
func Chain(log ports.EventLog, mws ...Middleware) ports.EventLog {
	for i := len(mws) - 1; i >= 0; i-- {
		log = mws[i](log)
	}
	return log
}
