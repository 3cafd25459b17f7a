package notify

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// ANSI colors for the toast prefix
const (
	colorGreen  = "\x1b[32m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
	colorReset  = "\x1b[0m"
)

// Notifier is the transient message surface: one colored line per event,
// nothing persisted, nothing fatal.
type Notifier struct {
	out io.Writer
}

// New returns a notifier writing to out
func New(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

// Success shows a green toast
func (n *Notifier) Success(msg string) {
	fmt.Fprintf(n.out, "%s[ok]%s %s\n", colorGreen, colorReset, msg)
}

// Error shows a red toast and leaves a diagnostic log entry
func (n *Notifier) Error(msg string, err error) {
	fmt.Fprintf(n.out, "%s[error]%s %s\n", colorRed, colorReset, msg)
	if err != nil {
		logrus.WithError(err).Debug(msg)
	}
}

// Warning shows a yellow toast
func (n *Notifier) Warning(msg string) {
	fmt.Fprintf(n.out, "%s[warn]%s %s\n", colorYellow, colorReset, msg)
}

// Info shows a neutral toast
func (n *Notifier) Info(msg string) {
	fmt.Fprintf(n.out, "%s[info]%s %s\n", colorCyan, colorReset, msg)
}
