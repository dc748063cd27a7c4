package cmd

import (
	"fmt"
	"time"

	"aisearch/cargo"
	"aisearch/planning"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newPlanCmd(opts *options) *cobra.Command {
	var heuristic string
	var greedy, estimateOnly bool

	planCmd := &cobra.Command{
		Use:   "plan [problem]",
		Short: "Estimate and solve an air cargo problem",
		Long: `Builds the planning graph of an air cargo problem, prints the level-sum,
max-level and set-level estimates of its initial state and searches for a plan.

    $ aisearch plan p2 --heuristic maxlevel
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg.Planning
			if len(args) == 1 {
				cfg.Problem = args[0]
			}
			if cmd.Flags().Changed("heuristic") {
				cfg.Heuristic = heuristic
			}
			if cmd.Flags().Changed("greedy") {
				cfg.Greedy = greedy
			}

			problem, err := cargo.ByName(cfg.Problem)
			if err != nil {
				return err
			}
			graphOptions := []planning.Option{
				planning.WithSerialize(cfg.Serialize),
				planning.WithIgnoreMutexes(cfg.IgnoreMutexes),
			}

			out := cmd.OutOrStdout()
			initial := problem.Initial()
			pg := planning.NewPlanningGraph(problem, initial, graphOptions...).Fill(-1)
			fmt.Fprintf(out, "problem %s: %d fluents, %d actions, %d goals\n", cfg.Problem, len(problem.StateMap()), len(problem.Actions()), len(problem.Goal()))
			fmt.Fprintf(out, "graph leveled after %d levels\n", pg.Levels())
			fmt.Fprintf(out, "level-sum %d, max-level %d, set-level %d\n", pg.LevelSum(), pg.MaxLevel(), pg.SetLevel())
			if estimateOnly {
				return nil
			}

			h, err := planning.HeuristicByName(cfg.Heuristic, graphOptions...)
			if err != nil {
				return err
			}
			if cfg.CacheSize > 0 {
				cache, err := planning.NewHeuristicCache(cfg.CacheSize)
				if err != nil {
					return err
				}
				h = cache.Wrap(cfg.Heuristic, h)
			}

			strategy := planning.AStar
			if cfg.Greedy {
				strategy = planning.GreedyBestFirst
			}

			start := time.Now()
			plan, err := planning.Search(cmd.Context(), problem, initial, h, strategy)
			if err != nil {
				return err
			}
			log.Info().Msgf("found plan of length %d after %d expansions in %s", plan.Len(), plan.Expansions, time.Since(start))

			for i, action := range plan.Actions {
				fmt.Fprintf(out, "%2d. %s\n", i+1, action)
			}
			return nil
		},
	}

	planCmd.Flags().StringVar(&heuristic, "heuristic", "", "levelsum, maxlevel, setlevel, unmet or zero")
	planCmd.Flags().BoolVar(&greedy, "greedy", false, "greedy best-first instead of A*")
	planCmd.Flags().BoolVar(&estimateOnly, "estimate-only", false, "print the estimates without searching")
	return planCmd
}
