package config

import (
	"fmt"
	"io"
)

// RenderEffective writes the resolved configuration as a human-readable
// annotated summary to w. This powers the "config show" command.
func RenderEffective(r *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration\n")
	ew.printf("# config file: %s\n", r.ConfigPath)
	ew.printf("# token file:  %s\n\n", r.TokenPath)

	ew.printf("server_url      = %q\n", r.ServerURL)
	ew.printf("client_id       = %q\n", r.ClientID)
	ew.printf("redirect_port   = %d\n", r.RedirectPort)
	ew.printf("log_level       = %q\n", r.LogLevel)
	ew.printf("request_timeout = %q\n", r.RequestTimeout.String())

	if r.UserAgent != "" {
		ew.printf("user_agent      = %q\n", r.UserAgent)
	}

	ew.printf("pace_every      = %d\n", r.PaceEvery)
	ew.printf("pace_delay      = %q\n", r.PaceDelay.String())

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain
// printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
