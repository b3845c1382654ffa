package kdp

import (
	"log"
	"os"

	"github.com/petar/GoGauge/gauge"
)

// Amb is a small structured-logging context, grounded on GoDCCP's
// gauge.Logger: a label identifying the owning endpoint, a process-wide
// attribute published through gauge so external tooling can poll
// connection state without instrumenting the binary, and emit gated by
// gauge.Selected so a busy endpoint doesn't log every accepted packet
// unless the caller explicitly turns that submodule on.
type Amb struct {
	label string
}

// NewAmb creates an Amb publishing state under label (e.g. "kdp",
// "kdp.server"). Distinct Conn instances in the same process should use
// distinct labels if their states are to be told apart in the gauge.
func NewAmb(label string) *Amb {
	return &Amb{label: label}
}

// ambLogger is the actual sink; stdlib log, exactly as
// opd-ai-go-utp/api_test.go's testLogger uses log.New.
var ambLogger = log.New(os.Stderr, "[kdp] ", log.LstdFlags|log.Lmicroseconds)

// SetState publishes s into the gauge attribute store under this Amb's
// label, keyed "state".
func (a *Amb) SetState(s State) {
	gauge.SetAttr([]string{a.label}, "state", s.String())
}

// GetState reads back the last state published via SetState, or "" if
// none has been published yet.
func (a *Amb) GetState() string {
	v := gauge.GetAttr([]string{a.label}, "state")
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Logf emits a gated structured log line: submodule names the part of the
// engine the event pertains to (e.g. "ctrl", "cache", "conn"); the line is
// only written if gauge.Selected reports that submodule is turned on for
// this Amb's label.
func (a *Amb) Logf(submodule, event, format string, args ...interface{}) {
	if !gauge.Selected(a.label, submodule) {
		return
	}
	ambLogger.Printf("%s/%s %s: "+format, append([]interface{}{a.label, submodule, event}, args...)...)
}
