package main

import (
	"os"

	"github.com/nimzi/choose-folder/internal/choosefolder"
)

// choose-folder prints the folder(s) picked in the macOS "choose folder"
// dialog. Exit status 1 means the user cancelled.
func main() {
	os.Exit(choosefolder.Main())
}
