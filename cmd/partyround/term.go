package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/mcdev12/partyround/internal/models"
	"github.com/mcdev12/partyround/internal/session"
)

// terminalUI is the presentation collaborator: toasts, the reveal
// confirmation prompt and the answer-list render.
type terminalUI struct {
	reader *bufio.Reader
}

func newTerminalUI(reader *bufio.Reader) *terminalUI {
	return &terminalUI{reader: reader}
}

func (t *terminalUI) Notify(message string) {
	fmt.Printf("* %s\n", message)
}

// ConfirmReveal prompts inline. It runs on the command-loop goroutine, so
// reading from the shared reader is safe.
func (t *terminalUI) ConfirmReveal(ctx context.Context, answer models.Answer) (bool, error) {
	fmt.Printf("Spend 1 credit to reveal the author of %q? [y/N] ", answer.Text)
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	reply := strings.ToLower(strings.TrimSpace(line))
	return reply == "y" || reply == "yes", nil
}

// render prints the current round view.
func (t *terminalUI) render(snap session.Snapshot) {
	fmt.Printf("--- room %s (%s) | credits: %d ---\n", snap.Room.Code, snap.Room.Status, snap.User.Credits)
	if snap.Round == nil {
		fmt.Println("no question set yet")
		return
	}
	fmt.Printf("Q [%s]: %s\n", snap.Round.Status, snap.Round.Question)
	if len(snap.Answers) == 0 {
		fmt.Println("  (no answers yet)")
		return
	}
	for _, a := range snap.Answers {
		if a.Revealed {
			fmt.Printf("  #%d %s  (by %s)\n", a.ID, a.Text, a.AuthorDisplay)
		} else {
			fmt.Printf("  #%d %s  (hidden)\n", a.ID, a.Text)
		}
	}
}
