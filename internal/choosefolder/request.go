package choosefolder

// Request holds the options for one folder dialog. The zero value asks for a
// single visible folder with no prompt and the system's default location.
type Request struct {
	Prompt              string
	DefaultLocation     string // POSIX path
	ShowHidden          bool
	Multiple            bool
	ShowPackageContents bool
}

// Result is the outcome of a dialog: either the user cancelled, or Paths holds
// the selected folders as POSIX paths in the order the dialog returned them.
type Result struct {
	Cancelled bool
	Paths     []string
}

// Cancelled is the result of a dialog the user dismissed. It carries no paths.
func Cancelled() Result {
	return Result{Cancelled: true}
}

// Selected is the result of a confirmed dialog, paths in dialog order.
func Selected(paths ...string) Result {
	return Result{Paths: paths}
}
