package choosefolder

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	ErrUnsupportedPlatform = errors.New("this command requires macOS")
	ErrUnexpectedOutput    = errors.New("unexpected osascript output")
)

// Picker shows the native folder dialog and normalizes what it returns.
type Picker struct {
	Runner Runner
	GOOS   string
}

func NewPicker(r Runner) *Picker {
	return &Picker{Runner: r, GOOS: runtime.GOOS}
}

// Pick runs the dialog once and then converts every selected alias to a POSIX
// path with one further interpreter call each. A cancelled dialog is reported
// as Cancelled() with a nil error.
func (p *Picker) Pick(ctx context.Context, req Request) (Result, error) {
	if err := requireMacOS(p.GOOS); err != nil {
		return Result{}, err
	}

	script, err := BuildScript(req)
	if err != nil {
		return Result{}, err
	}
	out, err := p.Runner.Run(ctx, script)
	if err != nil {
		var se *ScriptError
		if errors.As(err, &se) && se.UserCanceled() {
			return Cancelled(), nil
		}
		return Result{}, fmt.Errorf("choose folder: %w", err)
	}

	refs, err := parseAliases(out)
	if err != nil {
		return Result{}, err
	}
	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		path, err := p.posixPath(ctx, ref)
		if err != nil {
			return Result{}, err
		}
		paths = append(paths, path)
	}
	return Selected(paths...), nil
}

func requireMacOS(platform string) error {
	if platform != "darwin" {
		return fmt.Errorf("%w (running on %s)", ErrUnsupportedPlatform, platform)
	}
	return nil
}

func (p *Picker) posixPath(ctx context.Context, ref string) (string, error) {
	script, err := PosixPathScript(ref)
	if err != nil {
		return "", err
	}
	out, err := p.Runner.Run(ctx, script)
	if err != nil {
		return "", fmt.Errorf("convert %q: %w", ref, err)
	}
	path := strings.TrimSpace(out)
	if path == "" {
		return "", fmt.Errorf("%w: empty POSIX path for %q", ErrUnexpectedOutput, ref)
	}
	return path, nil
}

// parseAliases splits "alias A:, alias B:" into ["A:", "B:"].
func parseAliases(out string) ([]string, error) {
	if strings.TrimSpace(out) == "" {
		return nil, fmt.Errorf("%w: empty selection", ErrUnexpectedOutput)
	}
	var refs []string
	for _, item := range strings.Split(out, ",") {
		item = strings.TrimSpace(item)
		ref, ok := strings.CutPrefix(item, aliasPrefix)
		if !ok || ref == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnexpectedOutput, item)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
