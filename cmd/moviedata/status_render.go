package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"moviedata/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

const checkLabelWidth = 18

// renderCheckLine formats one preflight result as "  Name: [PASS] detail".
func renderCheckLine(result preflight.Result, colorize bool) string {
	label, color := "FAIL", ansiRed
	if result.Passed {
		label, color = "PASS", ansiGreen
	}
	line := fmt.Sprintf("  %-*s [%s]", checkLabelWidth, result.Name+":", label)
	if detail := strings.TrimSpace(result.Detail); detail != "" {
		line += " " + detail
	}
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		line = ansiBlue + line + ansiReset
	}
	return []string{line}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
