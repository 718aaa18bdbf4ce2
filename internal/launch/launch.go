// Package launch recovers the file path the OS asked the application to
// open ("Open With" / file association launches).
package launch

import (
	"encoding/json"
	"fmt"
)

// GlobalName is the front-end global assigned the opened file path
const GlobalName = "window.__OPENED_FILE__"

// Arg is the optional launch file path. It is computed once at startup and
// never changes afterwards.
type Arg struct {
	path    string
	present bool
}

// FromArgs captures the launch argument from a process argument list, where
// args[0] is the executable.
func FromArgs(args []string) Arg {
	if len(args) > 1 {
		return Arg{path: args[1], present: true}
	}
	return Arg{}
}

// FromPath wraps an already-known path. An empty path means no argument.
func FromPath(path string) Arg {
	if path == "" {
		return Arg{}
	}
	return Arg{path: path, present: true}
}

// Path returns the launch file path, if one was supplied.
func (a Arg) Path() (string, bool) {
	return a.path, a.present
}

// Optional returns the path as a pointer, nil when absent.
func (a Arg) Optional() *string {
	if !a.present {
		return nil
	}
	p := a.path
	return &p
}

// Script returns the JavaScript statement that publishes the path to the
// front-end, e.g. window.__OPENED_FILE__ = "/docs/report.pdf";
func (a Arg) Script() (string, bool) {
	if !a.present {
		return "", false
	}
	encoded, err := json.Marshal(a.path)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s = %s;", GlobalName, encoded), true
}
