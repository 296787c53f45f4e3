// Package repl provides the interactive mode of ecoply-cli. Each line is
// dispatched to the same command tree as single-command mode, and the
// prompt shows the route the session is on.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// Config configures a REPL.
type Config struct {
	Input  io.Reader
	Output io.Writer
	// Prompt is evaluated before every line.
	Prompt func() string
	Exec   Executor
	// Commands seeds completion; a line ending in "?" lists matches.
	Commands []string
	// Arguments are completion values per command path.
	Arguments map[string][]string
	History  *History
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    func() string
	exec      Executor
	completer *Completer
	history   *History
}

// New creates a new REPL instance.
func New(cfg Config) *REPL {
	r := &REPL{
		input:     cfg.Input,
		output:    cfg.Output,
		prompt:    cfg.Prompt,
		exec:      cfg.Exec,
		completer: NewCompleter(cfg.Commands...),
		history:   cfg.History,
	}
	for cmd, vals := range cfg.Arguments {
		r.completer.AddArguments(cmd, vals...)
	}
	if r.input == nil {
		r.input = os.Stdin
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if r.prompt == nil {
		r.prompt = func() string { return "ecoply> " }
	}
	if r.history == nil {
		r.history = NewHistory(DefaultHistoryPath())
	}
	return r
}

// History returns the session history.
func (r *REPL) History() *History {
	return r.history
}

// Run starts the REPL loop. It returns on EOF, exit or quit, or when ctx
// is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		reader := bufio.NewReader(r.input)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-stop:
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.output, r.prompt())

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		case err := <-readErr:
			fmt.Fprintln(r.output)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case line = <-lines:
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.history.Add(line)

		switch line {
		case "exit", "quit":
			return nil
		case "history":
			for i, entry := range r.history.Entries() {
				fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
			}
			continue
		}

		if strings.HasSuffix(line, "?") {
			for _, s := range r.completer.Complete(strings.TrimSuffix(line, "?")) {
				fmt.Fprintln(r.output, s)
			}
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := SplitArgs(line)
	if err != nil {
		return err
	}
	if r.exec == nil || len(args) == 0 {
		return nil
	}
	return r.exec(ctx, args)
}

// SplitArgs splits a command line on whitespace, honouring single and
// double quotes and backslash escapes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		escaped bool
		inArg   bool
	)

	for _, ch := range line {
		switch {
		case escaped:
			cur.WriteRune(ch)
			escaped = false
		case ch == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteRune(ch)
			}
		case ch == '"' || ch == '\'':
			quote = ch
			inArg = true
		case ch == ' ' || ch == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(ch)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
