// Package printer writes the command line output of the multibranch tool.
package printer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr

	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	faint  = color.New(color.Faint)
)

func Success(format string, a ...any) {
	green.Fprintf(Out, "✓ %s\n", fmt.Sprintf(format, a...))
}

func Printf(format string, a ...any) {
	fmt.Fprintf(Out, format, a...)
}

func Warning(format string, a ...any) {
	yellow.Fprintf(Err, "! %s\n", fmt.Sprintf(format, a...))
}

// Error prints title and explanation to Err and returns an error carrying
// only the title.
func Error(title, explanation string, suggestions ...string) error {
	red.Fprintf(Err, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(Err, "\n%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(Err)
		for _, s := range suggestions {
			fmt.Fprintf(Err, "  - %s\n", s)
		}
	}
	return fmt.Errorf("%s", title)
}

// Decision renders one head's inclusion verdict.
func Decision(name string, included bool, reason string) {
	mark := green.Sprint("included")
	if !included {
		mark = faint.Sprint("excluded")
	}
	if reason != "" {
		fmt.Fprintf(Out, "%-30s %s  %s\n", name, mark, reason)
		return
	}
	fmt.Fprintf(Out, "%-30s %s\n", name, mark)
}

// Table writes rows aligned under header.
func Table(header []string, rows [][]string) error {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

var ErrNotInteractive = errors.New("stdin is not a terminal")

func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadSecret prompts for a value without echoing it.
func ReadSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNotInteractive
	}
	fmt.Fprint(Err, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(Err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
