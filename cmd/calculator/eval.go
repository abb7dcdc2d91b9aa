package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/calculator"
)

var evalCmd = &cobra.Command{
	Use:   "eval [expression...]",
	Short: "Evaluate expressions",
	Long: `Evaluates each argument as an expression and prints its result. With no
arguments, or with --in, the expression is read from a file or stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inname, _ := cmd.Flags().GetString("in")
		nl, _ := cmd.Flags().GetBool("lines")
		echo, _ := cmd.Flags().GetBool("echo")

		srcs, err := inputs(cmd.InOrStdin(), inname, nl, len(args) == 0)
		if err != nil {
			return err
		}
		srcs = append(srcs, args...)
		if n := evalAll(cmd.OutOrStdout(), srcs, echo); n > 0 {
			return fmt.Errorf("%d of %d expressions failed", n, len(srcs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().String("in", "", "input file (default stdin if no args given)")
	evalCmd.Flags().BoolP("lines", "n", false, "parse separate input lines as separate expressions")
	evalCmd.Flags().Bool("echo", false, "print parse trees")
}

// inputs reads expressions from the named file, or from stdin if the name is
// "-" or std is true and no name is given.
func inputs(stdin io.Reader, inname string, nl, std bool) ([]string, error) {
	var r io.Reader
	switch {
	case inname != "" && inname != "-":
		f, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	case inname == "-", std:
		r = stdin
	default:
		return nil, nil
	}

	if !nl {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(b)) == "" {
			return nil, errors.New("no expression given")
		}
		return []string{string(b)}, nil
	}
	var srcs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := sc.Text(); strings.TrimSpace(line) != "" {
			srcs = append(srcs, line)
		}
	}
	return srcs, sc.Err()
}

// evalAll prints the result of each expression, or its error, and returns the
// number that failed.
func evalAll(w io.Writer, srcs []string, echo bool) int {
	failed := 0
	for _, src := range srcs {
		a, err := calculator.ParseString(src)
		if err != nil {
			fmt.Fprintln(w, err)
			failed++
			continue
		}
		if echo {
			fmt.Fprintf(w, "%v : ", a)
		}
		r, err := a.Eval()
		if err != nil {
			fmt.Fprintln(w, err)
			failed++
			continue
		}
		fmt.Fprintln(w, calculator.FormatResult(r))
	}
	return failed
}
