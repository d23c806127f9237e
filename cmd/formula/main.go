// Command formula evaluates phase-item quantity formulas.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zephyrtronium/formula"
)

// app holds the state shared by the commands of one invocation.
type app struct {
	cfg    *viper.Viper
	logger *zap.Logger
	cache  *formula.Cache
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: viper.New(), logger: zap.NewNop()}
	var cfgFile string
	root := &cobra.Command{
		Use:   "formula",
		Short: "Evaluate phase-item quantity formulas",
		Long: `formula compiles arithmetic quantity formulas and evaluates them over
alignment intervals.

Formulas use + - * /, unary minus, parentheses, numbers, and variables.
Every interval defines startPk, endPk, rawLength, sideFactor, length, and
pointCount; other variables come from --given or sheet inputs. Put formulas
that begin with a minus sign after -- so they are not read as flags.

Settings may also come from a YAML config file or FORMULA_* environment
variables, e.g. FORMULA_CACHE_SIZE.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.configure(cfgFile); err != nil {
				return err
			}
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (YAML)")
	pf.BoolP("verbose", "v", false, "log debug output to stderr")
	pf.Int("cache-size", 1024, "maximum compiled formulas to keep (0 for unbounded)")
	_ = a.cfg.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.cfg.BindPFlag("cache.size", pf.Lookup("cache-size"))

	root.AddCommand(newEvalCmd(a), newRPNCmd(a), newSheetCmd(a))
	return root
}

func (a *app) configure(cfgFile string) error {
	a.cfg.SetEnvPrefix("FORMULA")
	a.cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.cfg.AutomaticEnv()
	if cfgFile != "" {
		a.cfg.SetConfigFile(cfgFile)
		if err := a.cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	a.cache = formula.NewCache(a.cfg.GetInt("cache.size"))
	return nil
}

func (a *app) initLogger() error {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.cfg.GetBool("verbose") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}
