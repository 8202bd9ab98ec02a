// Package terminal reads answers to interactive prompts and wipes the
// echoed prompt from the screen once it is read, so DSNs and passwords do
// not linger in the scrollback.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const defaultWidth = 80

// Width returns the column count of f, or 80 when f is not a terminal.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// Rows is the number of screen rows n printed characters occupy.
func Rows(n, width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	rows := (n + width - 1) / width
	if rows < 1 {
		return 1
	}
	return rows
}

// Erase clears the rows taken by echoed plus the empty row left by Enter.
// The cursor ends at the start of the first cleared row.
func Erase(w io.Writer, echoed string, width int) {
	n := Rows(utf8.RuneCountInString(echoed), width) + 1
	for i := 0; i < n; i++ {
		io.WriteString(w, "\r\x1b[2K")
		if i < n-1 {
			io.WriteString(w, "\x1b[1A")
		}
	}
}

func isTerminal(w io.Writer) (*os.File, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}
	return f, true
}

// Line prints prompt to out and returns the next line of in, trimmed.
// Prompt and answer are erased when out is a terminal.
func Line(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read answer: %w", err)
	}
	answer := strings.TrimSpace(line)
	if f, ok := isTerminal(out); ok {
		Erase(f, prompt+answer, Width(f))
	}
	return answer, nil
}

// Password reads a secret without echo when stdin is a terminal and falls
// back to a plain line read from buf otherwise (pipes, tests).
func Password(stdin *os.File, buf *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if stdin != nil && term.IsTerminal(int(stdin.Fd())) {
		b, err := term.ReadPassword(int(stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		if f, ok := isTerminal(out); ok {
			Erase(f, prompt, Width(f))
		}
		return string(b), nil
	}
	line, err := buf.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
