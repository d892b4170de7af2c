// Package shell provides the interactive sheetkit REPL.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/klytics/sheetkit/internal/controller"
	"github.com/klytics/sheetkit/internal/plot"
	"github.com/klytics/sheetkit/internal/render"
)

// ErrExit is returned by Eval for "exit" and "quit".
var ErrExit = errors.New("exit")

// verbs maps shell words to controller actions.
var verbs = map[string]controller.Action{
	"sheet":   controller.ActionSheet,
	"bounds":  controller.ActionBounds,
	"addcols": controller.ActionAddCols,
	"cell":    controller.ActionCell,
	"set":     controller.ActionSetCell,
	"col":     controller.ActionColumn,
	"values":  controller.ActionValues,
	"plot":    controller.ActionPlot,
	"pie":     controller.ActionPlot,
	"png":     controller.ActionPNG,
	"pdf":     controller.ActionPDF,
}

var builtins = []string{"help", "history", "exit", "quit"}

var plotWords = []string{
	string(render.KindBar), string(render.KindPie),
	string(plot.ModeAuto), string(plot.ModeCategory), string(plot.ModeNumeric),
	string(plot.ModeValue), string(plot.ModeHist),
}

// Session manages an interactive shell session over one controller.
type Session struct {
	Out            io.Writer
	CommandHistory []string
	HistoryFile    string
	StartTime      time.Time

	ctrl *controller.Controller
}

// NewSession creates a new interactive session. Output goes to out.
func NewSession(ctrl *controller.Controller, out io.Writer) *Session {
	home, _ := os.UserHomeDir()
	histFile := filepath.Join(home, ".sheetkit", "shell_history")
	os.MkdirAll(filepath.Dir(histFile), 0755)

	return &Session{
		Out:         out,
		HistoryFile: histFile,
		StartTime:   time.Now(),
		ctrl:        ctrl,
	}
}

// Run starts the REPL loop. Blocks until 'exit' or Ctrl+D.
func (s *Session) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sheet> ",
		HistoryFile:     s.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(s.buildCompleter()...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          s.Out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintln(s.Out, "sheetkit — Interactive Shell")
	if id := s.ctrl.SheetID(); id != "" {
		fmt.Fprintf(s.Out, "Sheet: %s\n", id)
	} else {
		fmt.Fprintln(s.Out, "Paste a sheet URL with 'sheet <url>' to begin.")
	}
	fmt.Fprintln(s.Out, "Type 'help' for commands, 'exit' to quit.")
	fmt.Fprintln(s.Out)

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.CommandHistory = append(s.CommandHistory, line)

		// Action errors are already on the status line.
		if _, err := s.Eval(ctx, line); errors.Is(err, ErrExit) {
			break
		}
	}

	fmt.Fprintf(s.Out, "\nSession ended. %d commands run in %s.\n",
		len(s.CommandHistory), formatDuration(time.Since(s.StartTime)))
	return nil
}

// Eval runs one shell line. Built-ins write to Out; actions report through
// the controller's status line.
func (s *Session) Eval(ctx context.Context, line string) (*controller.Outcome, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	switch fields[0] {
	case "exit", "quit":
		return nil, ErrExit
	case "help":
		s.printHelp()
		return nil, nil
	case "history":
		for i, cmd := range s.CommandHistory {
			fmt.Fprintf(s.Out, "  %d  %s\n", i+1, cmd)
		}
		return nil, nil
	}

	action, req, err := Parse(line)
	if err != nil {
		s.ctrl.Status().Error(err)
		return nil, err
	}
	return s.ctrl.Dispatch(ctx, action, req)
}

// Parse turns a shell line into a controller action.
func Parse(line string) (controller.Action, controller.Request, error) {
	var req controller.Request
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", req, fmt.Errorf("empty command")
	}
	verb, args := fields[0], fields[1:]
	action, ok := verbs[verb]
	if !ok {
		return "", req, fmt.Errorf("unknown command %q — type 'help'", verb)
	}

	switch verb {
	case "sheet":
		if len(args) != 1 {
			return "", req, fmt.Errorf("usage: sheet <url|id>")
		}
		req.Sheet = args[0]
	case "cell":
		if len(args) != 2 {
			return "", req, fmt.Errorf("usage: cell <row> <col>")
		}
		row, err := parseRow(args[0])
		if err != nil {
			return "", req, err
		}
		req.Row, req.Col = row, args[1]
	case "set":
		if len(args) < 2 {
			return "", req, fmt.Errorf("usage: set <row> <col> [value]")
		}
		row, err := parseRow(args[0])
		if err != nil {
			return "", req, err
		}
		req.Row, req.Col = row, args[1]
		// Value keeps the user's spacing after the column.
		req.Value = valueAfter(line, 3)
	case "col", "values":
		if len(args) == 0 {
			return "", req, fmt.Errorf("usage: %s <letter|header>", verb)
		}
		req.Col = strings.Join(args, " ")
	case "plot", "pie":
		if verb == "pie" {
			req.Kind = render.KindPie
		}
		var col []string
		for _, a := range args {
			if k, err := render.ParseKind(a); err == nil && req.Kind == "" {
				req.Kind = k
				continue
			}
			if m, err := plot.ParseMode(a); err == nil && a != "" {
				req.Mode = m
				continue
			}
			col = append(col, a)
		}
		req.Col = strings.Join(col, " ")
	case "png", "pdf":
		if len(args) == 0 {
			return "", req, fmt.Errorf("usage: %s <path>", verb)
		}
		req.Path = valueAfter(line, 1)
	}
	return action, req, nil
}

func parseRow(s string) (int, error) {
	row, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("row must be a number, got %q", s)
	}
	return row, nil
}

// valueAfter returns line with its first n fields and the following spaces removed.
func valueAfter(line string, n int) string {
	rest := strings.TrimLeft(line, " \t")
	for i := 0; i < n; i++ {
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			return ""
		}
		rest = strings.TrimLeft(rest[idx:], " \t")
	}
	return strings.TrimRight(rest, " \t")
}

// Complete returns tab-completion candidates for the given input.
func (s *Session) Complete(input string) []string {
	parts := strings.Fields(input)
	trailing := strings.HasSuffix(input, " ")

	if len(parts) == 0 || (len(parts) == 1 && !trailing) {
		prefix := ""
		if len(parts) == 1 {
			prefix = parts[0]
		}
		return matching(s.commands(), prefix)
	}

	var candidates []string
	switch parts[0] {
	case "plot", "pie":
		candidates = append(append(candidates, plotWords...), s.headers()...)
	case "col", "values":
		candidates = s.headers()
	default:
		return nil
	}
	prefix := ""
	if !trailing {
		prefix = parts[len(parts)-1]
	}
	return matching(candidates, prefix)
}

func (s *Session) commands() []string {
	cmds := append([]string{}, builtins...)
	for v := range verbs {
		cmds = append(cmds, v)
	}
	sort.Strings(cmds)
	return cmds
}

// headers offers cached header names only; completion never hits the service.
func (s *Session) headers() []string {
	b := s.ctrl.Cached()
	if b == nil {
		return nil
	}
	var out []string
	for _, h := range b.Headers {
		if h != "" && !strings.Contains(h, " ") {
			out = append(out, h)
		}
	}
	return out
}

func matching(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.Out, "Available commands:")
	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, "  sheet <url|id>           select a spreadsheet")
	fmt.Fprintln(s.Out, "  bounds                   show row/column counts and headers")
	fmt.Fprintln(s.Out, "  addcols                  run the derived-columns job")
	fmt.Fprintln(s.Out, "  cell <row> <col>         read one cell")
	fmt.Fprintln(s.Out, "  set <row> <col> <value>  write one cell")
	fmt.Fprintln(s.Out, "  col <letter|header>      select the column to plot")
	fmt.Fprintln(s.Out, "  values <letter|header>   fetch a column's values")
	fmt.Fprintln(s.Out, "  plot [col] [mode]        bar chart (auto, category, numeric, value, hist)")
	fmt.Fprintln(s.Out, "  pie [col]                pie chart of the top values")
	fmt.Fprintln(s.Out, "  png <path>, pdf <path>   export the current chart")
	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, "Shell commands:")
	fmt.Fprintln(s.Out, "  help       — show this help")
	fmt.Fprintln(s.Out, "  history    — show command history")
	fmt.Fprintln(s.Out, "  exit       — exit the shell")
}

func (s *Session) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range s.commands() {
		switch cmd {
		case "col", "values":
			items = append(items, readline.PcItem(cmd, readline.PcItemDynamic(func(string) []string { return s.headers() })))
		case "plot", "pie":
			var subs []readline.PrefixCompleterInterface
			for _, w := range plotWords {
				subs = append(subs, readline.PcItem(w))
			}
			subs = append(subs, readline.PcItemDynamic(func(string) []string { return s.headers() }))
			items = append(items, readline.PcItem(cmd, subs...))
		default:
			items = append(items, readline.PcItem(cmd))
		}
	}
	return items
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
