package choosefolder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidText is returned when a value cannot be embedded in an
// AppleScript string literal.
var ErrInvalidText = errors.New("text contains a NUL byte")

// Script is a single line of AppleScript source.
type Script string

func (s Script) String() string { return string(s) }

// BuildScript assembles the "choose folder" command for req. Clauses follow
// the dialog's grammar order; options that are empty or false are left out.
func BuildScript(req Request) (Script, error) {
	var b strings.Builder
	b.WriteString("choose folder")

	if req.Prompt != "" {
		lit, err := quoteAppleScript(req.Prompt)
		if err != nil {
			return "", fmt.Errorf("prompt: %w", err)
		}
		b.WriteString(" with prompt ")
		b.WriteString(lit)
	}
	if req.DefaultLocation != "" {
		lit, err := quoteAppleScript(req.DefaultLocation)
		if err != nil {
			return "", fmt.Errorf("default location: %w", err)
		}
		b.WriteString(" default location (POSIX file ")
		b.WriteString(lit)
		b.WriteString(")")
	}
	if req.ShowHidden {
		b.WriteString(" with invisibles")
	}
	if req.Multiple {
		b.WriteString(" with multiple selections allowed")
	}
	if req.ShowPackageContents {
		b.WriteString(" with showing package contents")
	}
	return Script(b.String()), nil
}

// PosixPathScript converts a colon-delimited alias reference (without the
// "alias " prefix) into a POSIX path.
func PosixPathScript(ref string) (Script, error) {
	lit, err := quoteAppleScript(ref)
	if err != nil {
		return "", fmt.Errorf("alias %q: %w", ref, err)
	}
	return Script("POSIX path of alias " + lit), nil
}

func quoteAppleScript(s string) (string, error) {
	if strings.ContainsRune(s, 0) {
		return "", ErrInvalidText
	}
	// Backslash first, otherwise the other escapes get doubled.
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`, nil
}
