package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/njchilds90/dimplot/internal/library"
)

const replPrompt = "dimplot> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session: define functions, enter equations, render",
		Long: `Start an interactive session. Each line is either a function definition,
Name(params) = body, or an equation, which is added as a shape.

With --watch, edits to --functions-file are reloaded between lines.`,
		Example: `  dimplot repl -d 3
  dimplot repl --functions-file shapes.yaml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

func runREPL(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	s := newSession(cmdCtx.Cfg, cmdCtx.Env, cmdCtx.Logger)
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	reload := make(chan struct{}, 1)
	if cmdCtx.Cfg.Watch {
		w, err := library.Watch(ctx, cmdCtx.Cfg.FunctionsFile, cmdCtx.Logger, func() {
			select {
			case reload <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          out,
		Stderr:          errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(out, "dimplot REPL (dimension %d)\n", s.Dimension())
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		select {
		case <-reload:
			if err := s.Reload(); err != nil {
				_, _ = fmt.Fprintf(errOut, "Error: reload: %v\n", err)
			} else {
				_, _ = fmt.Fprintf(out, "reloaded %s\n", cmdCtx.Cfg.FunctionsFile)
			}
		default:
		}

		if quit := handleREPLLine(s, line, out, errOut); quit {
			break
		}
	}
	return nil
}

// handleREPLLine runs one line and reports whether the session should end.
func handleREPLLine(s *session, line string, out, errOut io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return handleDotCommand(s, line, out, errOut)
	}
	msg, err := s.Submit(line)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return false
	}
	_, _ = fmt.Fprintln(out, msg)
	return false
}

func handleDotCommand(s *session, line string, out, errOut io.Writer) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	report := func(err error) {
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)

	case ".dim":
		if len(args) == 0 {
			_, _ = fmt.Fprintf(out, "dimension %d (%s)\n", s.Dimension(), strings.Join(s.env.Axes().Names(), ", "))
			return false
		}
		d, err := strconv.Atoi(args[0])
		if err != nil {
			report(fmt.Errorf("usage: .dim <n>"))
			return false
		}
		if err := s.SetDimension(d); err != nil {
			report(err)
			return false
		}
		_, _ = fmt.Fprintf(out, "dimension %d\n", s.Dimension())

	case ".functions":
		fns := s.env.Functions()
		if len(fns) == 0 {
			_, _ = fmt.Fprintln(out, "no functions defined")
		}
		for _, d := range fns {
			_, _ = fmt.Fprintln(out, d.String())
		}

	case ".undef":
		if len(args) != 1 {
			report(errors.New("usage: .undef <name>"))
			return false
		}
		if !s.env.Undefine(args[0]) {
			report(fmt.Errorf("no function named %s", args[0]))
		}

	case ".slice":
		for _, a := range args {
			name, raw, ok := strings.Cut(a, "=")
			v, err := strconv.ParseFloat(raw, 64)
			if !ok || err != nil {
				report(fmt.Errorf("usage: .slice <axis>=<value>..."))
				return false
			}
			s.env.SetSlice(name, v)
		}
		for _, name := range s.env.SliceNames() {
			_, _ = fmt.Fprintf(out, "%s = %g\n", name, s.env.Slice(name))
		}

	case ".shapes":
		for i, sh := range s.shapes.Shapes() {
			state := ""
			if !sh.Visible {
				state = " (hidden)"
			}
			_, _ = fmt.Fprintf(out, "%d. %s [%s]%s: %s\n", i+1, sh.Name, sh.Color, state, sh.Expanded)
		}

	case ".hide", ".show":
		name, _, err := shapeArg(s, args, 0)
		if err == nil {
			err = s.shapes.SetVisible(name, command == ".show")
		}
		report(err)

	case ".remove":
		name, _, err := shapeArg(s, args, 0)
		if err == nil && !s.shapes.Remove(name) {
			err = fmt.Errorf("no shape named %q", name)
		}
		report(err)

	case ".color":
		name, rest, err := shapeArg(s, args, 1)
		if err == nil {
			err = s.shapes.SetColor(name, rest[0])
		}
		report(err)

	case ".move":
		name, rest, err := shapeArg(s, args, 2)
		var v []float64
		if err == nil {
			v, err = floats(rest)
		}
		if err == nil {
			err = s.shapes.Translate(name, v[0], v[1])
		}
		report(err)

	case ".rotate":
		name, rest, err := shapeArg(s, args, 1)
		var v []float64
		if err == nil {
			v, err = floats(rest)
		}
		if err == nil {
			err = s.shapes.Rotate(name, v[0])
		}
		report(err)

	case ".clear":
		s.shapes.Clear()

	case ".save":
		if len(args) != 1 {
			report(errors.New("usage: .save <file>"))
			return false
		}
		if err := s.Save(args[0]); err != nil {
			report(err)
			return false
		}
		_, _ = fmt.Fprintf(out, "wrote %s\n", args[0])

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// shapeArg resolves the first argument, a 1-based shape number or a name,
// and returns the n arguments after it.
func shapeArg(s *session, args []string, n int) (string, []string, error) {
	if len(args) != n+1 {
		return "", nil, fmt.Errorf("expected a shape and %d more argument(s)", n)
	}
	ref := args[0]
	if i, err := strconv.Atoi(ref); err == nil {
		shapes := s.shapes.Shapes()
		if i < 1 || i > len(shapes) {
			return "", nil, fmt.Errorf("no shape number %d", i)
		}
		return shapes[i-1].Name, args[1:], nil
	}
	return ref, args[1:], nil
}

func floats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %s", a)
		}
		out[i] = v
	}
	return out, nil
}

func printREPLHelp(w io.Writer) {
	help := `
Input:
  Name(a, b) = body   Define a function (the body may use sum/product/max and n[i])
  lhs = rhs           Add an equation as a shape

Commands:
  .help               Show this help message
  .dim [n]            Show or set the dimension
  .functions          List defined functions
  .undef <name>       Remove a function
  .slice z=<v>...     Show or set the values of axes beyond y
  .shapes             List shapes
  .hide/.show <s>     Toggle a shape (number or name)
  .color <s> <name>   Recolour a shape
  .move <s> <dx> <dy> Translate a shape
  .rotate <s> <deg>   Rotate a shape
  .remove <s>         Remove a shape
  .clear              Remove every shape
  .save <file>        Render the visible shapes to a file
  .quit / .exit       Exit the REPL
`
	_, _ = fmt.Fprintln(w, help)
}

func newREPLCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, c := range []string{
		".help", ".dim", ".functions", ".undef", ".slice", ".shapes", ".hide", ".show",
		".color", ".move", ".rotate", ".remove", ".clear", ".save", ".quit", ".exit",
	} {
		items = append(items, readline.PcItem(c))
	}
	for _, c := range []string{"sum(", "product(", "max(", "abs(", "sqrt("} {
		items = append(items, readline.PcItem(c))
	}
	return readline.NewPrefixCompleter(items...)
}

// historyFile is kept in the user cache directory; no history is written
// when that is unavailable.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "dimplot")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}
