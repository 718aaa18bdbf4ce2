package dialog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// TerminalBackend prompts for paths on a terminal. It stands in for native
// dialogs when the command server runs headless. Prompts share one input
// stream, so a new prompt takes over from the previous one: the earlier
// prompt returns a cancel and the next line typed answers the new prompt.
type TerminalBackend struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer

	// pending is the outstanding line read; it outlives an abandoned prompt
	pending chan lineResult

	// active is closed when the current prompt is taken over
	active chan struct{}
}

type lineResult struct {
	line string
	err  error
}

// NewTerminalBackend creates a backend reading from in and prompting on out
func NewTerminalBackend(in io.Reader, out io.Writer) *TerminalBackend {
	return &TerminalBackend{in: bufio.NewReader(in), out: out}
}

// OpenFile prompts for a file to open. An empty line cancels.
func (b *TerminalBackend) OpenFile(opts OpenOptions) (string, error) {
	return b.prompt(opts.Title, opts.Directory, "", opts.Filters)
}

// SaveFile prompts for a save location. An empty line accepts the default
// name when there is one, otherwise cancels. A single "-" always cancels.
func (b *TerminalBackend) SaveFile(opts SaveOptions) (string, error) {
	return b.prompt(opts.Title, opts.Directory, opts.DefaultName, opts.Filters)
}

func (b *TerminalBackend) prompt(title, dir, defaultName string, filters []Filter) (string, error) {
	b.mu.Lock()
	if b.active != nil {
		close(b.active)
	}
	done := make(chan struct{})
	b.active = done

	fmt.Fprintln(b.out, title)
	for _, f := range filters {
		fmt.Fprintf(b.out, "  %s\n", f.Label())
	}
	if dir != "" {
		fmt.Fprintf(b.out, "Last folder: %s\n", dir)
	}
	if defaultName != "" {
		fmt.Fprintf(b.out, "Enter file path [%s]: ", defaultName)
	} else {
		fmt.Fprint(b.out, "Enter file path (empty to cancel): ")
	}

	if b.pending == nil {
		ch := make(chan lineResult, 1)
		b.pending = ch
		go func() {
			line, err := b.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}
	lines := b.pending
	b.mu.Unlock()

	var r lineResult
	select {
	case r = <-lines:
	case <-done:
		return "", nil
	}

	b.mu.Lock()
	if b.active != done {
		// Taken over as the line arrived; it belongs to the newer prompt
		lines <- r
		b.mu.Unlock()
		return "", nil
	}
	b.pending = nil
	b.active = nil
	b.mu.Unlock()

	if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, r.err)
	}

	path := strings.TrimSpace(r.line)
	switch {
	case path == "-":
		return "", nil
	case path == "":
		return defaultName, nil
	}
	return path, nil
}
