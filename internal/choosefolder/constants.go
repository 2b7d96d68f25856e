package choosefolder

const (
	DefaultOsascript = "osascript"

	FormatLines = "lines"
	FormatNull  = "null"
	FormatJSON  = "json"

	// aliasPrefix is how osascript renders an alias value, e.g.
	// "alias Macintosh HD:Users:x:Desktop:".
	aliasPrefix = "alias "

	// AppleScript error -128 is raised when the user presses Cancel.
	userCanceledNumber = "(-128)"
	userCanceledText   = "User canceled."

	EnvConfig    = "CHOOSE_FOLDER_CONFIG"
	EnvOsascript = "CHOOSE_FOLDER_OSASCRIPT"

	ExitOK        = 0
	ExitCancelled = 1
	ExitError     = 2
)
