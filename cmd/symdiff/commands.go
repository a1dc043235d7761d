package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	symdiff "github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/logging"
	"github.com/njchilds90/symdiff/internal/server"
)

type globalOptions struct {
	maxDepth  int
	unitChain bool
	logLevel  string
}

// engine builds an Engine whose debug records go to stderr.
func (o *globalOptions) engine(cmd *cobra.Command) *symdiff.Engine {
	logger := logging.New(logging.Config{LogLevel: o.logLevel, Format: "text"}, cmd.ErrOrStderr())
	return symdiff.New(
		symdiff.WithMaxDepth(o.maxDepth),
		symdiff.WithUnitChain(o.unitChain),
		symdiff.WithLogger(logger),
	)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "symdiff",
		Short:         "Symbolic differentiation with a step-by-step trace",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Symbolic differentiation with a step-by-step trace.

An expression that starts with "-" is read as a flag unless it follows "--".`,
	}
	flags := root.PersistentFlags()
	flags.IntVar(&opts.maxDepth, "max-depth", symdiff.DefaultMaxDepth, "maximum expression nesting depth")
	flags.BoolVar(&opts.unitChain, "unit-chain", false, "keep the trailing 1 factor of the power rule on the variable itself")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newDeriveCmd(opts),
		newSimplifyCmd(opts),
		newTokensCmd(),
		newServeCmd(),
	)
	return root
}

type derivationJSON struct {
	Source     string                 `json:"source"`
	Variable   string                 `json:"variable"`
	Input      string                 `json:"input"`
	Derivative string                 `json:"derivative"`
	Simplified string                 `json:"simplified"`
	Steps      []symdiff.RenderedStep `json:"steps"`
}

func newDeriveCmd(opts *globalOptions) *cobra.Command {
	var (
		variable  string
		showSteps bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "derive [--] <expr>",
		Short: "Differentiate an expression and print the simplified result as TeX",
		Example: `  symdiff derive "x^2 + 3x"
  symdiff derive --steps --var y "x*y + y^2"
  symdiff derive -- "-x^2"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.engine(cmd).Differentiate(args[0], variable)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, derivationJSON{
					Source:     d.Source,
					Variable:   d.Variable,
					Input:      symdiff.Render(d.Input),
					Derivative: symdiff.Render(d.Derivative),
					Simplified: d.LaTeX,
					Steps:      symdiff.RenderSteps(d.Steps),
				})
			}
			fmt.Fprintln(out, d.LaTeX)
			if showSteps {
				return writeSteps(out, symdiff.RenderSteps(d.Steps), isTerminal(out))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&variable, "var", "v", symdiff.DefaultVariable, "variable to differentiate with respect to")
	cmd.Flags().BoolVarP(&showSteps, "steps", "s", false, "print the rule applications after the result")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the whole derivation as JSON")
	return cmd
}

func newSimplifyCmd(opts *globalOptions) *cobra.Command {
	var asTree bool
	cmd := &cobra.Command{
		Use:   "simplify [--] <expr>",
		Short: "Simplify an expression and print it as TeX",
		Example: `  symdiff simplify "x + x + 2"
  symdiff simplify -- "-x*-y"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.engine(cmd).ParseString(args[0])
			if err != nil {
				return err
			}
			simplified := symdiff.Simplify(e)
			if asTree {
				return writeJSON(cmd.OutOrStdout(), symdiff.Tree(simplified))
			}
			fmt.Fprintln(cmd.OutOrStdout(), symdiff.Render(simplified))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTree, "tree", false, "print the simplified expression tree as JSON")
	return cmd
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [--] <expr>",
		Short: "Print the token stream, implicit multiplication included",
		Example: `  symdiff tokens "3x(x+1)"
  symdiff tokens -- "-2x"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := symdiff.Tokenize(args[0])
			if err != nil {
				return err
			}
			for _, t := range tokens {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			logger := logging.Init(cfg.Logging)
			if !cfg.Server.DebugMode {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides config)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
