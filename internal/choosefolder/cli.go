package choosefolder

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

// errCancelled is returned by the root command when the user dismissed the
// dialog; Main maps it to ExitCancelled without printing it.
var errCancelled = errors.New("cancelled")

var (
	// goos is the platform the root command guards on.
	goos = runtime.GOOS
	// interactive reports whether config init may ask before overwriting.
	interactive = isTTY
)

type pickFunc func(ctx context.Context, bin string, req Request) (Result, error)

func pickWithOsascript(ctx context.Context, bin string, req Request) (Result, error) {
	return NewPicker(Osascript{Bin: bin}).Pick(ctx, req)
}

// Flags holds the raw command-line values. Only flags the user actually set
// override the config file.
type Flags struct {
	Prompt              string
	DefaultLocation     string
	ShowHidden          bool
	Multiple            bool
	ShowPackageContents bool
	Osascript           string
	Format              string
	Quiet               bool
}

// settings is the merged view of defaults, config file, environment and flags.
type settings struct {
	Request Request
	Bin     string
	Format  string
}

func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, pickWithOsascript)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, pick pickFunc) int {
	root := newRootCmd(pick)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errCancelled):
		return ExitCancelled
	default:
		fmt.Fprintln(stderr, "choose-folder: "+err.Error())
		return ExitError
	}
}

func newRootCmd(pick pickFunc) *cobra.Command {
	flags := &Flags{}

	root := &cobra.Command{
		Use:   "choose-folder",
		Short: "Show the macOS folder picker and print the selected POSIX paths",
		Long: strings.TrimSpace(`
Show the native macOS "choose folder" dialog and print the selected folder(s)
as POSIX paths, one per line.

Exit status:
  0  one or more folders were selected
  1  the dialog was cancelled
  2  an error occurred (including running on a platform other than macOS)

Defaults for every flag can be stored in a TOML file (see: choose-folder config path).
The osascript binary can also be set with CHOOSE_FOLDER_OSASCRIPT.
`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireMacOS(goos); err != nil {
				return err
			}
			s, err := resolveSettings(cmd, flags)
			if err != nil {
				return err
			}
			res, err := pick(cmd.Context(), s.Bin, s.Request)
			if err != nil {
				return err
			}
			if res.Cancelled {
				if !flags.Quiet {
					fmt.Fprintln(cmd.ErrOrStderr(), "cancelled")
				}
				return errCancelled
			}
			return writePaths(cmd.OutOrStdout(), s.Format, res.Paths)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Prompt, "prompt", "p", "", "Prompt text shown in the dialog")
	pf.StringVarP(&flags.DefaultLocation, "default-location", "d", "", "Folder the dialog opens in (POSIX path, ~ allowed)")
	pf.BoolVar(&flags.ShowHidden, "show-hidden", false, "Show invisible files and folders")
	pf.BoolVarP(&flags.Multiple, "multiple", "m", false, "Allow selecting more than one folder")
	pf.BoolVar(&flags.ShowPackageContents, "show-package-contents", false, "Allow browsing inside packages and bundles")
	pf.StringVar(&flags.Osascript, "osascript", "", "osascript binary (overrides "+EnvOsascript+")")
	pf.StringVar(&flags.Format, "format", "", "Output format: lines, null or json (default lines)")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "Do not report cancellation on stderr")

	root.AddCommand(newScriptCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	return root
}

func resolveSettings(cmd *cobra.Command, flags *Flags) (settings, error) {
	cfg, err := loadConfig()
	if err != nil {
		return settings{}, err
	}
	return mergeSettings(cmd, flags, cfg)
}

func mergeSettings(cmd *cobra.Command, flags *Flags, cfg AppConfig) (settings, error) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	req := cfg.Request()
	if changed("prompt") {
		req.Prompt = flags.Prompt
	}
	if changed("default-location") {
		req.DefaultLocation = strings.TrimSpace(flags.DefaultLocation)
	}
	if changed("show-hidden") {
		req.ShowHidden = flags.ShowHidden
	}
	if changed("multiple") {
		req.Multiple = flags.Multiple
	}
	if changed("show-package-contents") {
		req.ShowPackageContents = flags.ShowPackageContents
	}
	req.DefaultLocation = expandUser(req.DefaultLocation)

	format := cfg.Format
	if changed("format") {
		format = strings.ToLower(strings.TrimSpace(flags.Format))
	}
	format = firstNonEmpty(format, FormatLines)
	if err := validateFormat(format); err != nil {
		return settings{}, err
	}

	var flagBin string
	if changed("osascript") {
		flagBin = strings.TrimSpace(flags.Osascript)
	}
	bin := firstNonEmpty(flagBin, strings.TrimSpace(os.Getenv(EnvOsascript)), cfg.Osascript, DefaultOsascript)

	return settings{Request: req, Bin: bin, Format: format}, nil
}

func writePaths(w io.Writer, format string, paths []string) error {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(paths)
	case FormatNull:
		for _, p := range paths {
			if _, err := io.WriteString(w, p+"\x00"); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, p := range paths {
			if _, err := fmt.Fprintln(w, p); err != nil {
				return err
			}
		}
		return nil
	}
}

func newScriptCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "script",
		Short: "Print the AppleScript the dialog would run, without running it",
		Long: strings.TrimSpace(`
Print the "choose folder" AppleScript built from the current flags and config
without invoking osascript. Works on any platform.

Example:
  choose-folder script -m --prompt "Pick projects" | osascript
`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, flags)
			if err != nil {
				return err
			}
			script, err := BuildScript(s.Request)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), script)
			return nil
		},
	}
}

func newConfigCmd(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage choose-folder defaults",
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), getConfigPath())
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings (config file, environment and flags)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := getConfigPath()
			cfg, err := readConfigAt(source)
			switch {
			case errors.Is(err, errConfigNotFound):
				cfg = defaultAppConfig()
				source = "(none, using defaults)"
			case err != nil:
				return err
			}
			s, err := mergeSettings(cmd, flags, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:                %s\n", source)
			fmt.Fprintf(out, "prompt:                %s\n", s.Request.Prompt)
			fmt.Fprintf(out, "default location:      %s\n", s.Request.DefaultLocation)
			fmt.Fprintf(out, "show hidden:           %t\n", s.Request.ShowHidden)
			fmt.Fprintf(out, "multiple:              %t\n", s.Request.Multiple)
			fmt.Fprintf(out, "show package contents: %t\n", s.Request.ShowPackageContents)
			fmt.Fprintf(out, "osascript:             %s\n", s.Bin)
			fmt.Fprintf(out, "format:                %s\n", s.Format)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Long: strings.TrimSpace(`
Write a config file holding the settings given on the command line, e.g.

  choose-folder config init --multiple --default-location ~/Projects

An existing file is only replaced with --force, or after confirming on a
terminal.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := getConfigPath()
			overwrite := force
			if !overwrite && interactive() {
				if _, err := os.Stat(path); err == nil {
					ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Overwrite %s? [y/N] ", path))
					if err != nil {
						return err
					}
					if !ok {
						return errors.New("aborted: config file left unchanged")
					}
					overwrite = true
				}
			}
			s, err := mergeSettings(cmd, flags, defaultAppConfig())
			if err != nil {
				return err
			}
			cfg := AppConfig{
				Prompt:              s.Request.Prompt,
				DefaultLocation:     s.Request.DefaultLocation,
				ShowHidden:          s.Request.ShowHidden,
				Multiple:            s.Request.Multiple,
				ShowPackageContents: s.Request.ShowPackageContents,
				Format:              s.Format,
			}
			if cmd.Flags().Changed("osascript") {
				cfg.Osascript = s.Bin
			}
			if err := writeConfigAt(path, cfg, overwrite); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	cmd.AddCommand(pathCmd, showCmd, initCmd)
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
