// Command symexec is the CLI front end for the engine: list the demo
// programs, describe one, explore its full state forest, or search for
// a path reaching its target() sentinel.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/swvm/symexec/pkg/demo"
	"github.com/swvm/symexec/pkg/engine"
	"github.com/swvm/symexec/pkg/llm"
	"github.com/swvm/symexec/pkg/present"
	"github.com/swvm/symexec/pkg/smt"
)

func main() {
	// No zerolog logger exists at this level: run and find build their
	// own inside RunE. Any error a subcommand returns is reported here
	// through the stdlib logger.
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("symexec: %v", err)
	}
}

func newLogger() zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: colorable.NewColorableStdout()}
	return zerolog.New(cw).With().Timestamp().Logger()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "symexec",
		Short: "forward symbolic execution over a small imperative language",
	}
	root.AddCommand(newListCmd())
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newFindCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the available demo scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range demo.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", s.Name, s.Description)
			}
			return nil
		},
	}
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <scenario>",
		Short: "print a scenario's source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := demo.Find(args[0])
			if err != nil {
				return err
			}
			fn, err := s.Source.Produce()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), present.FunctionText(fn))
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var budget int
	var timeout time.Duration
	var bound int64
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "explore a scenario's full state forest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			s, err := demo.Find(args[0])
			if err != nil {
				return err
			}
			fn, err := s.Source.Produce()
			if err != nil {
				return err
			}
			bridge, err := smt.NewPrologBridge()
			if err != nil {
				return err
			}
			cfg := engine.DefaultConfig()
			cfg.SolverBound = bound
			sch, err := engine.New(fn, bridge, cfg, logger)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			result, err := sch.Explore(ctx, budget)
			if err != nil {
				return err
			}
			dumper := present.NewStdoutDumper()
			dumper.PoolSummary(len(result.Frontier), len(result.Unreachable), len(result.Terminated), len(result.Reaching))
			if result.BudgetExhausted {
				logger.Warn().Msg("budget exhausted before the frontier emptied")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&budget, "budget", 20, "number of scheduler rounds to run")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "wall-clock timeout for the whole run")
	cmd.Flags().Int64Var(&bound, "bound", 256, "per-variable bound for the bounded integer solver")
	return cmd
}

func newFindCmd() *cobra.Command {
	var budget int
	var timeout time.Duration
	var bound int64
	var explain bool
	cmd := &cobra.Command{
		Use:   "find <scenario>",
		Short: "search for a path reaching target() and print its witness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			s, err := demo.Find(args[0])
			if err != nil {
				return err
			}
			fn, err := s.Source.Produce()
			if err != nil {
				return err
			}
			bridge, err := smt.NewPrologBridge()
			if err != nil {
				return err
			}
			cfg := engine.DefaultConfig()
			cfg.SolverBound = bound
			sch, err := engine.New(fn, bridge, cfg, logger)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			result, err := sch.FindPathToTarget(ctx, budget)
			if err != nil {
				return err
			}
			if len(result.Reaching) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no reaching state found within budget")
				if result.BudgetExhausted {
					fmt.Fprintln(cmd.OutOrStdout(), "(budget exhausted)")
				}
				return nil
			}

			dumper := present.NewStdoutDumper()
			reaching := result.Reaching[0]
			dumper.Full(ctx, reaching, bridge, sch.Formals(), bound)

			if explain {
				witness, err := reaching.Witness(ctx, bridge, sch.Formals(), bound)
				if err != nil {
					return err
				}
				client := llm.New()
				prompt := client.BuildPrompt(llm.WitnessReport{
					FunctionName: fn.Name,
					Trace:        reaching.Trace,
					Condition:    reaching.Condition.Render(),
					Witness:      witness,
					ReachedGoal:  true,
				})
				text, err := client.Chat(ctx, prompt)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "\n"+text)

				replayed, err := demo.Replay(fn, witness, 10_000)
				if err != nil {
					logger.Warn().Err(err).Msg("witness replay failed")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "\nreplay: hit_target=%v loop_visits=%d\n", replayed.HitTarget, replayed.LoopVisits)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&budget, "budget", 80, "number of scheduler rounds to run")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "wall-clock timeout for the whole run")
	cmd.Flags().Int64Var(&bound, "bound", 256, "per-variable bound for the bounded integer solver")
	cmd.Flags().BoolVar(&explain, "explain", false, "ask the configured LLM provider to explain the witness in prose")
	return cmd
}
