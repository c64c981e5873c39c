// Package display renders the fuzzer's running state to the terminal:
// network stats, crash count, the selected vs. currently-used
// strategy, and a preview of the request/response bytes for the
// current iteration. Not part of the core fuzzing logic.
package display

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"upnpfuzz/internal/netio"
)

// PreviewLen bounds how many bytes of a request/response are printed.
const PreviewLen = 160

// Display clears the terminal and redraws compact status lines each
// iteration.
type Display struct {
	statLabel  func(a ...any) string
	crashLabel func(a ...any) string
	reqLabel   func(a ...any) string
	respLabel  func(a ...any) string
}

// New builds a colorized terminal Display.
func New() *Display {
	return &Display{
		statLabel:  color.New(color.FgCyan).SprintFunc(),
		crashLabel: color.New(color.FgRed, color.Bold).SprintFunc(),
		reqLabel:   color.New(color.FgYellow).SprintFunc(),
		respLabel:  color.New(color.FgGreen).SprintFunc(),
	}
}

// Banner prints a one-line startup banner, the colorized counterpart
// to the original's ASCII splash.
func (d *Display) Banner(protocol string) {
	fmt.Println(d.statLabel(fmt.Sprintf("upnpfuzz — %s", protocol)))
}

// Stats clears the terminal and renders the running
// network/crash/strategy state for the current iteration.
func (d *Display) Stats(stats netio.Stats, crashes int, generator, selected, current string) {
	fmt.Print("\033[H\033[2J")
	uptime := time.Since(stats.StartTime).Round(time.Second)
	fmt.Println(d.statLabel(fmt.Sprintf(
		"[%s] generator=%s strategy=%s/%s requests=%d timeouts=%d errors=%d uptime=%s",
		time.Now().Format("15:04:05"), generator, selected, current,
		stats.TotalRequests, stats.Timeouts, stats.Errors, uptime,
	)))
	if crashes > 0 {
		fmt.Println(d.crashLabel(fmt.Sprintf("crashes=%d", crashes)))
	}
}

// Request prints a bounded preview of the outgoing request bytes.
func (d *Display) Request(req []byte) {
	fmt.Println(d.reqLabel("> " + preview(req)))
}

// Response prints a bounded preview of the incoming response bytes.
func (d *Display) Response(resp []byte) {
	fmt.Println(d.respLabel("< " + preview(resp)))
}

func preview(b []byte) string {
	if len(b) > PreviewLen {
		b = b[:PreviewLen]
	}
	return fmt.Sprintf("%q", b)
}
