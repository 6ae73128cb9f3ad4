package auth

import (
	"errors"
	"os/exec"
	"runtime"
)

// BrowserOpener opens url in the user's browser.
type BrowserOpener func(url string) error

// OpenBrowser opens the default browser to the specified URL.
func OpenBrowser(url string) error {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return errors.New("unsupported platform")
	}
}
