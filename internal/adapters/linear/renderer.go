// Package linear provides a synchronous, line-oriented progress renderer.
package linear

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/pyrun/internal/ui/output"
	"go.trai.ch/pyrun/internal/ui/style"
)

// Renderer implements ports.Renderer. It prints one line when a target
// starts and one when it finishes.
type Renderer struct {
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	targets map[string]*targetState // spanID -> target state
}

type targetState struct {
	name      string
	startTime time.Time
}

// NewRenderer creates a Renderer writing to stderr.
func NewRenderer(stderr io.Writer) *Renderer {
	return NewRendererWithProfile(stderr, output.ColorProfile)
}

// NewRendererWithProfile creates a Renderer with a custom color profile selector.
func NewRendererWithProfile(stderr io.Writer, profileFn func() termenv.Profile) *Renderer {
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stderr:  stderr,
		output:  output.NewWithProfile(stderr, profileFn),
		targets: make(map[string]*targetState),
	}
}

// OnPlanEmit prints the planned targets.
func (r *Renderer) OnPlanEmit(targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Planning to run %d target(s): %s\n",
		len(targets), strings.Join(targets, ", "))
}

// OnTargetStart prints a target start message.
func (r *Renderer) OnTargetStart(spanID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets[spanID] = &targetState{
		name:      name,
		startTime: startTime,
	}

	prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", prefix)
}

// OnTargetComplete prints the completion status of a target.
func (r *Renderer) OnTargetComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.targets[spanID]
	if !ok {
		return
	}
	delete(r.targets, spanID)

	duration := endTime.Sub(target.startTime)
	prefix := r.output.String(fmt.Sprintf("[%s]", target.name)).Faint().String()

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(r.output.Color(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
		return
	}

	symbol := r.output.String(style.Check).Foreground(r.output.Color(string(style.Green))).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, duration)
}
