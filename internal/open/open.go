package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/wa-contacts/internal/parse"
	"github.com/Zuo-Peng/wa-contacts/internal/table"
)

// MessageLine returns the file line of the newest message from name in a
// messages table written by table.SaveMessages (header on line 1, one
// message per line), or 0 when name has no messages.
func MessageLine(msgs []parse.Message, name string) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == name {
			return i + 2
		}
	}
	return 0
}

// Contact opens the messages table in $EDITOR at name's newest message.
func Contact(path, name string) error {
	msgs, err := table.LoadMessages(path)
	if err != nil {
		return err
	}

	lineNum := MessageLine(msgs, name)
	if lineNum == 0 {
		return fmt.Errorf("no messages from %q in %s", name, path)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, path, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
