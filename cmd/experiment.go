package cmd

import (
	"fmt"

	"aisearch/experiments"
	"aisearch/experiments/metrics"
	"aisearch/searcher/agent"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newExperimentCmd(opts *options) *cobra.Command {
	var withMetrics bool
	var games int

	experimentCmd := &cobra.Command{
		Use:   "experiment [name]",
		Short: "Run a predefined experiment and store its records as CSV",
		Long: `Runs every match up of an experiment (baselines, exploration, cutoff or
throughput) and writes agent_configs.csv, game_records.csv and
move_records.csv into a timestamped folder of the output directory.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg.Experiment
			if len(args) == 1 {
				cfg.Name = args[0]
			}
			ctx := cmd.Context()

			experiment, err := experiments.ByName(cfg.Name)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("games") {
				cfg.Games = games
			}
			if cfg.Games > 0 {
				experiment.Games = cfg.Games
			}
			experiment.Concurrency = cfg.Concurrency
			experiment.MaxMoves = opts.cfg.Match.MaxMoves

			if needsBook(experiment.Configs...) {
				s, book, err := openBook(ctx, opts.cfg.Book)
				if err != nil {
					return err
				}
				defer s.Close()
				experiment.Resources = agent.Resources{Book: book, Persister: s}
			}

			var registry *prometheus.Registry
			if withMetrics {
				registry = prometheus.NewRegistry()
				prom, err := metrics.NewPrometheus(registry)
				if err != nil {
					return err
				}
				experiment.Resources.Collector = prom.NewCollector
			}

			writer, err := metrics.NewWriter(cfg.OutputDir, experiment.Name)
			if err != nil {
				return err
			}
			results, err := experiments.Run(ctx, experiment, writer)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, score := range results.Scores() {
				fmt.Fprintf(out, "agent %d vs agent %d: %d-%d (%d draws)\n", score.Agent1, score.Agent2, score.Wins1, score.Wins2, score.Draws)
			}
			if experiment.Name == "throughput" {
				for iterations, duration := range results.Throughputs() {
					fmt.Fprintf(out, "%d iterations: %s per move\n", iterations, duration)
				}
			}

			if registry != nil {
				families, err := registry.Gather()
				if err != nil {
					return err
				}
				for _, family := range families {
					for _, m := range family.GetMetric() {
						switch {
						case m.GetCounter() != nil:
							log.Info().Str("metric", family.GetName()).Float64("value", m.GetCounter().GetValue()).Msg("search metric")
						case m.GetHistogram() != nil:
							log.Info().Str("metric", family.GetName()).Uint64("count", m.GetHistogram().GetSampleCount()).Float64("sum", m.GetHistogram().GetSampleSum()).Msg("search metric")
						}
					}
				}
			}
			return nil
		},
	}

	experimentCmd.Flags().IntVar(&games, "games", 0, "games per match up, overrides the experiment default")
	experimentCmd.Flags().BoolVar(&withMetrics, "metrics", false, "collect prometheus search metrics")
	return experimentCmd
}
