package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/zephyrtronium/formula"
	"github.com/zephyrtronium/formula/internal/config"
	"github.com/zephyrtronium/formula/internal/logging"
	"github.com/zephyrtronium/formula/sheet"
)

func main() {
	config.LoadEnv()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cellDef struct {
	label  string
	tokens []string
}

func parseCell(s string) (cellDef, error) {
	label, src, ok := strings.Cut(s, "=")
	if !ok {
		return cellDef{}, fmt.Errorf(`cell definitions must be "LABEL=tokens", not %q`, s)
	}
	return cellDef{label: strings.TrimSpace(label), tokens: strings.Fields(src)}, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	var (
		cells      []cellDef
		verb       string
		cols, rows int
		echo, v    bool
	)
	fs := flag.NewFlagSet("formula", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Func("cell", "LABEL=tokens cell definition, computed in order (any number of times)", func(s string) error {
		c, err := parseCell(s)
		if err != nil {
			return err
		}
		cells = append(cells, c)
		return nil
	})
	fs.StringVar(&verb, "fmt", "%g", "result formatting verb")
	fs.IntVar(&cols, "cols", cfg.Sheet.Columns, "number of sheet columns")
	fs.IntVar(&rows, "rows", cfg.Sheet.Rows, "number of sheet rows")
	fs.BoolVar(&echo, "echo", false, "print formula tokens before the result")
	fs.BoolVar(&v, "v", false, "log evaluation details to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if cols <= 0 || rows <= 0 {
		fmt.Fprintf(stderr, "sheet dimensions (%dx%d) must be positive\n", cols, rows)
		return 2
	}

	level := cfg.Logging.Level
	if v {
		level = "debug"
	}
	handler := logging.Setup(stderr, level, cfg.Logging.Format)

	tokens := fs.Args()
	if len(tokens) == 1 {
		tokens = strings.Fields(tokens[0])
	}

	sh := sheet.New(cols, rows)
	e := formula.NewEvaluator(sh, formula.LogHandler(handler))
	for _, c := range cells {
		if err := sh.Set(c.label, c.tokens); err != nil {
			fmt.Fprintf(stderr, "setting %s: %v\n", c.label, err)
			return 2
		}
		if err := sh.Compute(c.label, e); err != nil {
			fmt.Fprintf(stderr, "computing %s: %v\n", c.label, err)
			return 2
		}
		slog.Debug("computed cell", "label", c.label, "message", sh.CellByLabel(c.label).Message())
	}

	if echo {
		fmt.Fprintf(stdout, "%q : ", tokens)
	}
	e.Evaluate(tokens)
	if m := e.Message(); m != "" {
		fmt.Fprintf(stdout, "%s (%v)\n", formula.Display(m), e.Err())
		return 1
	}
	fmt.Fprintf(stdout, verb+"\n", e.Result())
	return 0
}
