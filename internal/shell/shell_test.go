package shell

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", "https://example.com"}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", "https://example.com"}},
		{"linux", []string{"xdg-open", "https://example.com"}},
		{"freebsd", []string{"xdg-open", "https://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd := openCommand(tt.goos, "https://example.com")
			if !reflect.DeepEqual(cmd.Args, tt.want) {
				t.Errorf("openCommand(%s) args = %v, want %v", tt.goos, cmd.Args, tt.want)
			}
		})
	}
}

func TestRevealCommand(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", "-R", "/docs/a.pdf"}},
		{"windows", []string{"explorer", "/select,", "/docs/a.pdf"}},
		{"linux", []string{"xdg-open", "/docs"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd := revealCommand(tt.goos, "/docs/a.pdf")
			if !reflect.DeepEqual(cmd.Args, tt.want) {
				t.Errorf("revealCommand(%s) args = %v, want %v", tt.goos, cmd.Args, tt.want)
			}
		})
	}
}

// recordingOpener captures commands instead of running them
func recordingOpener(goos string) (*Opener, *[][]string) {
	var started [][]string
	return &Opener{
		goos: goos,
		start: func(cmd *exec.Cmd) error {
			started = append(started, cmd.Args)
			return nil
		},
	}, &started
}

func TestOpen_Validation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.pdf")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{"https url", "https://example.com/docs", false},
		{"http url", "http://example.com", false},
		{"mailto", "mailto:someone@example.com", false},
		{"existing file", file, false},
		{"existing dir", dir, false},
		{"file url", "file:///etc/passwd", true},
		{"javascript url", "javascript:alert(1)", true},
		{"missing path", filepath.Join(dir, "missing.pdf"), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, started := recordingOpener("linux")
			err := o.Open(tt.target)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) error = %v, wantErr %v", tt.target, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedTarget) {
					t.Errorf("error = %v, want ErrUnsupportedTarget", err)
				}
				if len(*started) != 0 {
					t.Errorf("command started for rejected target: %v", *started)
				}
				return
			}
			if len(*started) != 1 {
				t.Errorf("started %d commands, want 1", len(*started))
			}
		})
	}
}

func TestReveal(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.pdf")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	o, started := recordingOpener("darwin")
	if err := o.Reveal(file); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	want := [][]string{{"open", "-R", file}}
	if !reflect.DeepEqual(*started, want) {
		t.Errorf("started = %v, want %v", *started, want)
	}

	if err := o.Reveal(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("Reveal of missing path should fail")
	}
}
