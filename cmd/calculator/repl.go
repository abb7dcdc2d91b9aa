package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zephyrtronium/calculator"
	"github.com/zephyrtronium/calculator/internal/dto"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run an interactive calculator",
	Long: `Reads lines of keys and presses them on one calculator. "=" commits the
expression. Other commands:

  :del      delete the last character
  :neg      negate the expression
  :clear    clear the expression
  :history  show completed calculations
  :quit     exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tty := cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd()))
		r := newREPL(cmd.OutOrStdout(), tty)
		return r.run(cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// repl drives one calculator from typed lines.
type repl struct {
	calc *calculator.Calculator
	out  io.Writer
	// tty enables the prompt, colors, and rendered history.
	tty     bool
	profile termenv.Profile
	render  func(string) (string, error)
}

func newREPL(out io.Writer, tty bool) *repl {
	r := &repl{
		calc:    calculator.New(),
		out:     out,
		tty:     tty,
		profile: termenv.Ascii,
	}
	if tty {
		r.profile = termenv.ColorProfile()
		g, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err == nil {
			r.render = g.Render
		}
	}
	return r
}

func (r *repl) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		if r.tty {
			fmt.Fprint(r.out, "> ")
		}
		if !sc.Scan() {
			return sc.Err()
		}
		if !r.line(sc.Text()) {
			return nil
		}
	}
}

// line handles one input line and reports whether to continue.
func (r *repl) line(text string) bool {
	text = strings.TrimSpace(text)
	var acts []calculator.Action
	switch text {
	case "":
		return true
	case ":quit", ":q", ":exit":
		return false
	case ":del":
		acts = []calculator.Action{calculator.Delete{}}
	case ":neg":
		acts = []calculator.Action{calculator.Negate{}}
	case ":clear":
		acts = []calculator.Action{calculator.Clear{}}
	case ":history":
		r.history()
		return true
	default:
		var err error
		acts, err = dto.ParseKeys(text)
		if err != nil {
			r.fail(err)
			return true
		}
	}

	var s calculator.Snapshot
	for _, a := range acts {
		s = r.calc.Dispatch(a)
	}
	if s.HasError {
		r.fail(s.Err)
		return true
	}
	out := r.profile.String(s.Expression)
	if s.Expression == "" {
		out = r.profile.String("(empty)").Faint()
	} else if len(acts) > 0 && acts[len(acts)-1].Name() == "commit" {
		out = out.Foreground(r.profile.Color("#34d399")).Bold()
	}
	fmt.Fprintln(r.out, out)
	return true
}

func (r *repl) fail(err error) {
	fmt.Fprintln(r.out, r.profile.String("error: "+err.Error()).Foreground(r.profile.Color("#fb7185")))
}

func (r *repl) history() {
	hist := r.calc.Snapshot().History
	if len(hist) == 0 {
		fmt.Fprintln(r.out, r.profile.String("(no history)").Faint())
		return
	}
	if r.render != nil {
		var md strings.Builder
		md.WriteString("| # | Expression | Result |\n| --: | --- | --: |\n")
		for i, h := range hist {
			fmt.Fprintf(&md, "| %d | `%s` | %s |\n", i+1, h.Source, h.Result)
		}
		if out, err := r.render(md.String()); err == nil {
			fmt.Fprint(r.out, out)
			return
		}
	}
	for _, h := range hist {
		fmt.Fprintf(r.out, "%s = %s\n", h.Source, h.Result)
	}
}
