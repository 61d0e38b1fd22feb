// Package resume turns a session summary into a shell command that
// reopens the conversation. It only ever consumes the session id and
// working directory.
package resume

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
)

// Command builds the shell command that resumes a session, prefixed
// with a cd when the working directory is known.
func Command(sessionID, cwd string) string {
	cmd := fmt.Sprintf("claude --resume %s", shellQuote(sessionID))
	if cwd != "" {
		return fmt.Sprintf("cd %s && %s", shellQuote(cwd), cmd)
	}
	return cmd
}

// Copy puts the resume command on the clipboard, printing it instead
// when no clipboard is available.
func Copy(sessionID, cwd string) error {
	cmd := Command(sessionID, cwd)
	if err := clipboard.WriteAll(cmd); err != nil {
		fmt.Println(cmd)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", cmd)
	return nil
}

// Exec replaces the viewer with a resumed session in the current
// terminal.
func Exec(sessionID, cwd string) error {
	if cwd != "" {
		if err := os.Chdir(cwd); err != nil {
			return fmt.Errorf("chdir %s: %w", cwd, err)
		}
	}
	cmd := exec.Command("claude", "--resume", sessionID)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ValidID reports whether the session id looks like a session UUID.
func ValidID(sessionID string) bool {
	_, err := uuid.Parse(sessionID)
	return err == nil
}

// OpenInEditor opens the raw log file at a line in $EDITOR (less when
// unset).
func OpenInEditor(filePath string, lineNum int) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}
	if lineNum < 1 {
		lineNum = 1
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	var cmd *exec.Cmd
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		cmd = exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		cmd = exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		cmd = exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		cmd = exec.Command(editor, filePath)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// shellQuote wraps s in single quotes, escaping embedded quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
