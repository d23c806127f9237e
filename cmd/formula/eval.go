package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/formula"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		with       []string
		start, end float64
		side       string
	)
	cmd := &cobra.Command{
		Use:   "eval formula...",
		Short: "Evaluate formulas over one interval",
		Example: `  formula eval --start 0 --end 100 --side both 'length * depth' --given depth=0.4
  formula eval --given 'w=1.5' --given 'area=w*w' 'area / 2'
  formula eval --side both -- '-length * 0.2'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := formula.ParseSide(side)
			if err != nil {
				return err
			}
			g := formula.Geometry{StartPK: start, EndPK: end, Side: s}
			b, err := givenBindings(g, with)
			if err != nil {
				return err
			}
			verb := a.cfg.GetString("format") + "\n"
			out := cmd.OutOrStdout()
			for _, src := range args {
				r, err := a.cache.Eval(src, b)
				if err != nil {
					a.logger.Debug("evaluation failed", zap.String("formula", src), zap.Stringer("kind", formula.KindOf(err)))
					fmt.Fprintln(out, err)
					continue
				}
				fmt.Fprintf(out, verb, r)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&with, "given", nil, "name=value variable definition (any number of times)")
	f.Float64Var(&start, "start", 0, "start station of the interval")
	f.Float64Var(&end, "end", 0, "end station of the interval")
	f.StringVar(&side, "side", "left", "side of the interval: left, right, or both")
	f.String("fmt", "%g", "result formatting string")
	_ = a.cfg.BindPFlag("format", f.Lookup("fmt"))
	return cmd
}

// givenBindings builds the bindings for g with name=value definitions. Each
// value is itself a formula, evaluated with the geometry and the definitions
// before it.
func givenBindings(g formula.Geometry, with []string) (formula.Bindings, error) {
	raw := make(map[string]any, len(with))
	for _, s := range with {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return nil, fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		name, val := strings.TrimSpace(d[0]), strings.TrimSpace(d[1])
		r, err := formula.EvalString(val, formula.BuildBindings(g, raw))
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
		raw[name] = r
	}
	return formula.BuildBindings(g, raw), nil
}

func newRPNCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rpn formula...",
		Short: "Print the compiled program and variables of formulas",
		Example: `  formula rpn '(endPk - startPk) / 20'
  formula rpn -- '-2 + x*y'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var failed int
			for _, src := range args {
				p, err := a.cache.Compile(src)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", formula.KindOf(err), err)
					failed++
					continue
				}
				fmt.Fprintf(out, "%v : %s\n", p, strings.Join(p.Vars(), " "))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d formulas do not compile", failed, len(args))
			}
			return nil
		},
	}
}
