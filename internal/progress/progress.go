// Package progress renders in-flight status for long-running commands.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Indicator reports the progress of one operation.
type Indicator interface {
	Start(text string)
	Update(text string)
	Succeed(text string)
	Fail(text string)
}

// Nop discards progress output.
type Nop struct{}

func (Nop) Start(string)   {}
func (Nop) Update(string)  {}
func (Nop) Succeed(string) {}
func (Nop) Fail(string)    {}

var (
	okMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true).Render("✔")
	failMark = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Render("✖")
	dim      = lipgloss.NewStyle().Faint(true)
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a single status line on a terminal. On anything else it
// prints one line per distinct status text.
type Spinner struct {
	w        io.Writer
	tty      bool
	interval time.Duration

	mu      sync.Mutex
	text    string
	printed string
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer) *Spinner {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &Spinner{w: w, tty: tty, interval: 100 * time.Millisecond}
}

// Start begins reporting text.
func (s *Spinner) Start(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	if !s.tty {
		s.printLine(text)
		return
	}
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.animate(s.stop, s.done)
}

// Update replaces the status text.
func (s *Spinner) Update(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	if !s.tty {
		s.printLine(text)
	}
}

// Succeed stops the animation and prints a success line.
func (s *Spinner) Succeed(text string) {
	s.finish(okMark, text)
}

// Fail stops the animation and prints a failure line.
func (s *Spinner) Fail(text string) {
	s.finish(failMark, text)
}

func (s *Spinner) finish(mark, text string) {
	s.halt()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tty {
		fmt.Fprint(s.w, "\r\033[K")
	}
	fmt.Fprintf(s.w, "%s %s\n", mark, text)
	s.printed = ""
}

func (s *Spinner) halt() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		fmt.Fprintf(s.w, "\r\033[K%s %s", dim.Render(frames[i%len(frames)]), s.text)
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// printLine must be called with s.mu held.
func (s *Spinner) printLine(text string) {
	if text == s.printed {
		return
	}
	fmt.Fprintf(s.w, "%s\n", text)
	s.printed = text
}

// Event is one call recorded by Recorder.
type Event struct {
	Kind string
	Text string
}

// Recorder captures indicator calls for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: kind, Text: text})
}

func (r *Recorder) Start(text string)   { r.add("start", text) }
func (r *Recorder) Update(text string)  { r.add("update", text) }
func (r *Recorder) Succeed(text string) { r.add("succeed", text) }
func (r *Recorder) Fail(text string)    { r.add("fail", text) }

// Events returns a copy of the recorded calls.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many calls of kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent event, or the zero Event.
func (r *Recorder) Last() Event {
	events := r.Events()
	if len(events) == 0 {
		return Event{}
	}
	return events[len(events)-1]
}
