package repl

import (
	"io"
	"strings"

	"authportal/internal/cli/command"

	"github.com/chzyer/readline"
)

// Prompter reads input lines. Readline returns readline.ErrInterrupt on
// Ctrl-C and io.EOF when input ends.
type Prompter interface {
	Readline(prompt string) (string, error)
	// ReadPassword reads a line without echo.
	ReadPassword(prompt string) (string, error)
}

// LinePrompter is the terminal Prompter backed by readline.
type LinePrompter struct {
	rl *readline.Instance
}

// NewLinePrompter opens the terminal. Lines carrying a password are kept
// out of the history file.
func NewLinePrompter(historyFile string) (*LinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:            historyFile,
		DisableAutoSaveHistory: true,
		HistorySearchFold:      true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		AutoComplete:           completer(),
	})
	if err != nil {
		return nil, err
	}
	return &LinePrompter{rl: rl}, nil
}

func (p *LinePrompter) Readline(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if err != nil {
		return line, err
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" && !carriesSecret(trimmed) {
		_ = p.rl.SaveHistory(trimmed)
	}
	return line, nil
}

func (p *LinePrompter) ReadPassword(prompt string) (string, error) {
	value, err := p.rl.ReadPassword(prompt)
	return string(value), err
}

// Stdout is a writer that does not corrupt the prompt line.
func (p *LinePrompter) Stdout() io.Writer {
	return p.rl.Stdout()
}

func (p *LinePrompter) Close() error {
	return p.rl.Close()
}

func carriesSecret(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range []string{"password=", "pass=", "pwd=", "field password", "field pass"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func completer() *readline.PrefixCompleter {
	sub := map[string][]string{
		command.Show:     {"token", "config", "status", "profile"},
		command.Set:      {"base", "timeout"},
		command.Goto:     {"/login", "/register", "/user", "/logout"},
		command.Toggle:   {"secret"},
		command.SetField: {"username", "email", "password"},
		command.Login:    {"email=", "password="},
		command.Register: {"username=", "email=", "password="},
	}
	var items []readline.PrefixCompleterInterface
	for _, cmd := range command.Ordered() {
		var children []readline.PrefixCompleterInterface
		for _, name := range sub[cmd.Name] {
			children = append(children, readline.PcItem(name))
		}
		items = append(items, readline.PcItem(cmd.Name, children...))
	}
	return readline.NewPrefixCompleter(items...)
}
