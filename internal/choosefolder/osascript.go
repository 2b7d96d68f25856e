package choosefolder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrScriptFailed is matched by every *ScriptError.
var ErrScriptFailed = errors.New("osascript failed")

// Runner executes one AppleScript and returns its standard output.
type Runner interface {
	Run(ctx context.Context, script Script) (string, error)
}

// ScriptError reports a non-zero exit from the interpreter.
type ScriptError struct {
	Script   Script
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ScriptError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("osascript exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("osascript exited with status %d: %s", e.ExitCode, msg)
}

func (e *ScriptError) Unwrap() error { return e.Err }

func (e *ScriptError) Is(target error) bool { return target == ErrScriptFailed }

// UserCanceled reports whether the script stopped because the user pressed
// Cancel (AppleScript error -128).
func (e *ScriptError) UserCanceled() bool {
	return strings.Contains(e.Stderr, userCanceledNumber) || strings.Contains(e.Stderr, userCanceledText)
}

// Osascript runs scripts through the osascript binary. The script is fed on
// standard input. There is no timeout: a dialog waits for the user.
type Osascript struct {
	Bin string // default "osascript"
}

func (o Osascript) bin() string {
	return firstNonEmpty(o.Bin, DefaultOsascript)
}

func (o Osascript) Run(ctx context.Context, script Script) (string, error) {
	c := exec.CommandContext(ctx, o.bin())
	c.Stdin = strings.NewReader(string(script) + "\n")
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	if err == nil {
		return strings.TrimRight(stdout.String(), "\r\n"), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("run %s: %w", o.bin(), ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &ScriptError{
			Script:   script,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return "", fmt.Errorf("run %s: %w", o.bin(), err)
}
