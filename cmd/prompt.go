package cmd

import (
	"fmt"
	"strings"
)

// confirm asks a yes/no question on the terminal. Anything but y or yes is no.
func confirm(question string) bool {
	ctx.Formatter.Printf("%s [y/N] ", question)
	var response string
	fmt.Scanln(&response)
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	}
	return false
}
