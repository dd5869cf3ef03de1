package main

import (
	"io"
	"os"
	"strings"
	"testing"
)

// Argument validation failures never reach RunE; they must still
// surface as errors from Execute so main can report them before
// exiting non-zero.
func TestArgumentErrorsReachMain(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing width", []string{"server"}},
		{"unknown subcommand", []string{"frobnicate"}},
		{"too many tag args", []string{"tag", "0x1", "0x2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.SetArgs(tt.args)
			err := rootCmd.Execute()
			if err == nil {
				t.Fatalf("Execute(%v) should fail", tt.args)
			}
			if err.Error() == "" {
				t.Error("error message should not be empty")
			}
		})
	}
}

func TestPrintErrorWritesToStderr(t *testing.T) {
	oldStderr := os.Stderr
	oldNoColor := noColor
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	noColor = true
	defer func() {
		os.Stderr = oldStderr
		noColor = oldNoColor
	}()

	printError(`invalid border width "abc": must be a positive integer`)
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "invalid border width") {
		t.Errorf("stderr = %q, want the error message", out)
	}
	if !strings.Contains(string(out), "Error") {
		t.Errorf("stderr = %q, want an Error prefix", out)
	}
}
