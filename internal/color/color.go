package color

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// EnvColor forces colors on ("always") or off ("never").
const EnvColor = "SFMCP_COLOR"

var (
	osGetenv   = os.Getenv
	isTerminal = stdoutIsTerminal
)

// Enabled reports whether colored output should be used.
func Enabled() bool {
	if osGetenv("NO_COLOR") != "" {
		return false
	}
	switch strings.ToLower(osGetenv(EnvColor)) {
	case "always":
		return true
	case "never":
		return false
	}
	if osGetenv("TERM") == "dumb" {
		return false
	}
	return isTerminal()
}

// Initialize enables or disables go-pretty colors.
func Initialize() {
	if Enabled() {
		text.EnableColors()
		return
	}
	text.DisableColors()
}

func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
