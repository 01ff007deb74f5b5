package command

import (
	"strings"

	pkgerrors "authportal/pkg/errors"

	"github.com/google/shlex"
)

// Field defines a key=value input a command accepts.
type Field struct {
	Name    string
	Aliases []string
	Prompt  string
	// Secret fields are prompted without echo unless the form shows secrets.
	Secret   bool
	Required bool
}

// Command defines a REPL command.
type Command struct {
	Name    string
	Usage   string
	Summary string
	// MinArgs is the number of positional arguments required.
	MinArgs int
	Fields  []Field
}

// Params holds parsed key=value input.
type Params map[string]string

func (p Params) Get(key string) string {
	return p[strings.ToLower(key)]
}

func (p Params) Set(key, value string) {
	p[strings.ToLower(key)] = value
}

func (p Params) Has(key string) bool {
	_, ok := p[strings.ToLower(key)]
	return ok
}

// Canonicalize rewrites aliases to their field name.
func (p Params) Canonicalize(fields []Field) {
	for _, field := range fields {
		for _, alias := range field.Aliases {
			aliasKey := strings.ToLower(alias)
			if value, ok := p[aliasKey]; ok {
				p[strings.ToLower(field.Name)] = value
				delete(p, aliasKey)
			}
		}
	}
}

// Missing lists the required fields with no value.
func (p Params) Missing(fields []Field) []Field {
	var missing []Field
	for _, field := range fields {
		if field.Required && p.Get(field.Name) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Invocation is one parsed input line.
type Invocation struct {
	Command Command
	Args    []string
	Params  Params
}

// Arg returns positional argument i, or "".
func (inv Invocation) Arg(i int) string {
	if i < len(inv.Args) {
		return inv.Args[i]
	}
	return ""
}

// Parse splits line with shell quoting rules and resolves the command.
// For commands that declare fields, key=value tokens become params.
func Parse(commands map[string]Command, line string) (Invocation, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return Invocation{}, pkgerrors.Wrapf(err, pkgerrors.InvalidParams, "parse command failed: %v", err)
	}
	if len(tokens) == 0 {
		return Invocation{}, pkgerrors.Newf(pkgerrors.InvalidParams, "empty command")
	}
	cmd, ok := commands[strings.ToLower(tokens[0])]
	if !ok {
		return Invocation{}, pkgerrors.Newf(pkgerrors.InvalidParams, "unknown command: %s", tokens[0])
	}

	inv := Invocation{Command: cmd, Params: Params{}}
	for _, token := range tokens[1:] {
		if len(cmd.Fields) > 0 {
			parts := strings.SplitN(token, "=", 2)
			if len(parts) != 2 {
				return Invocation{}, pkgerrors.Newf(pkgerrors.InvalidParams, "invalid param: %s", token)
			}
			inv.Params.Set(parts[0], parts[1])
			continue
		}
		inv.Args = append(inv.Args, token)
	}
	inv.Params.Canonicalize(cmd.Fields)
	for key := range inv.Params {
		if !declares(cmd.Fields, key) {
			return Invocation{}, pkgerrors.Newf(pkgerrors.InvalidParams, "%s does not accept %s", cmd.Name, key)
		}
	}
	if len(inv.Args) < cmd.MinArgs {
		return Invocation{}, pkgerrors.Newf(pkgerrors.InvalidParams, "usage: %s", cmd.Usage)
	}
	return inv, nil
}

func declares(fields []Field, key string) bool {
	for _, field := range fields {
		if strings.EqualFold(field.Name, key) {
			return true
		}
	}
	return false
}
