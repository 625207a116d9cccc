// Package console provides an interactive command-line front end for an
// Engine, reading command lines from stdin (or any io.Reader for testing)
// and dispatching them through cmd.ExecuteLine.
package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/atlas-engine/atlas/server/cmd"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries    = 128
)

// Console reads commands from an io.Reader (defaulting to os.Stdin) and
// executes them against a bound source.
type Console struct {
	log     *slog.Logger
	reader  io.Reader
	history []string
}

// New returns a Console that reads from os.Stdin.
func New(log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{log: log, reader: os.Stdin}
}

// WithReader sets a custom reader for the console input, enabling testing
// without os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run consumes commands until ctx is cancelled or the reader reaches EOF. It
// uses the interactive go-prompt REPL only when reading from os.Stdin;
// otherwise it falls back to a plain line scanner so tests and piped input
// work without a terminal.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	src := &consoleSource{log: c.log}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "error", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line, src)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	src := &consoleSource{log: c.log}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("Atlas Console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line, src)
	}
}

func (c *Console) execute(line string, src *consoleSource) {
	input := strings.TrimSpace(line)
	if input == "" {
		return
	}

	c.history = append(c.history, "> "+input)

	out := cmd.ExecuteLine(src, input)
	for _, l := range out.Lines() {
		c.history = append(c.history, l)
	}
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}
	src.SendCommandOutput(out)
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	word := strings.TrimPrefix(doc.GetWordBeforeCursor(), "/")
	commands := cmd.Commands()
	suggestions := make([]prompt.Suggest, 0, len(commands))
	done := map[string]struct{}{}

	for alias, command := range commands {
		if alias != command.Name() {
			continue
		}
		if _, ok := done[command.Name()]; ok {
			continue
		}
		done[command.Name()] = struct{}{}
		suggestions = append(suggestions, prompt.Suggest{
			Text:        command.Name(),
			Description: command.Description(),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Text < suggestions[j].Text })
	return prompt.FilterHasPrefix(suggestions, word, true)
}

// History returns a copy of the console's line history, including both the
// echoed input lines ("> ...") and every command output line.
func (c *Console) History() []string {
	out := make([]string, len(c.history))
	copy(out, c.history)
	return out
}

type consoleSource struct {
	log *slog.Logger
}

func (c *consoleSource) Name() string { return "Console" }

func (c *consoleSource) SendCommandOutput(o *cmd.Output) {
	for _, line := range o.Lines() {
		c.log.Info(line)
	}
}
