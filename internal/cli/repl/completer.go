package repl

import (
	"sort"
	"strings"
)

// builtins are handled by the REPL itself.
var builtins = []string{"exit", "history", "quit"}

// Completer suggests command paths, and argument values for commands that
// registered them.
type Completer struct {
	commands []string
	args     map[string][]string
}

// NewCompleter returns a Completer over command paths such as
// "offers list", plus the REPL builtins.
func NewCompleter(commands ...string) *Completer {
	all := append(append([]string{}, commands...), builtins...)
	sort.Strings(all)
	return &Completer{commands: all, args: make(map[string][]string)}
}

// AddArguments registers the values completed after command, such as the
// route names accepted by "goto".
func (c *Completer) AddArguments(command string, values ...string) {
	vals := append(c.args[command], values...)
	sort.Strings(vals)
	c.args[command] = vals
}

// Complete returns the full lines that extend line. Once a command with
// registered arguments is typed, its values are offered instead.
func (c *Completer) Complete(line string) []string {
	fields := strings.Fields(line)
	trailing := strings.HasSuffix(line, " ")

	for n := len(fields); n > 0; n-- {
		cmd := strings.Join(fields[:n], " ")
		vals, ok := c.args[cmd]
		if !ok {
			continue
		}
		rest := fields[n:]
		if len(rest) > 1 || (len(rest) == 1 && trailing) {
			return nil
		}
		partial := ""
		if len(rest) == 1 {
			partial = rest[0]
		}
		if partial == "" && !trailing {
			break
		}
		var out []string
		for _, v := range vals {
			if strings.HasPrefix(v, partial) {
				out = append(out, cmd+" "+v)
			}
		}
		return out
	}

	prefix := strings.Join(fields, " ")
	if trailing && prefix != "" {
		prefix += " "
	}
	var out []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}
