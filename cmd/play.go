package cmd

import (
	"fmt"

	"aisearch/engine"
	"aisearch/game/isolation"
	"aisearch/searcher/agent"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newPlayCmd(opts *options) *cobra.Command {
	var quiet, second bool

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play one game of isolation between the configured agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg.Match
			ctx := cmd.Context()

			state, err := isolation.New(cfg.Width, cfg.Height)
			if err != nil {
				return err
			}

			resources := agent.Resources{}
			if needsBook(cfg.Agents...) {
				s, book, err := openBook(ctx, opts.cfg.Book)
				if err != nil {
					return err
				}
				defer s.Close()
				resources.Book = book
				resources.Persister = s
			}

			agents := [2]agent.Agent{}
			for i, config := range cfg.Agents {
				if config.Kind == "book" && config.Depth == 0 {
					config.Depth = opts.cfg.Book.Depth
				}
				if agents[i], err = agent.New(config, resources); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			out := termenv.NewOutput(w)
			observe := func(u engine.Update) {
				if quiet {
					return
				}
				fallback := ""
				if u.Fallback {
					fallback = " (fallback)"
				}
				fmt.Fprintf(w, "move %d: player %d plays %v%s\n", u.Step, u.Player+1, u.Action, fallback)
				fmt.Fprintln(w, renderBoard(out, u.State.(*isolation.State)))
			}

			first := 0
			if second {
				first = 1
			}
			match := engine.NewMatch(agents[0], agents[1],
				engine.WithMoveTimeout(cfg.MoveTimeout),
				engine.WithMaxMoves(cfg.MaxMoves),
				engine.WithObserver(observe),
			)
			gameMetric, _, err := match.Run(ctx, state, first)
			if err != nil {
				return err
			}

			if gameMetric.Winner < 0 {
				fmt.Fprintf(w, "draw after %d moves\n", gameMetric.TotalMoves)
				return nil
			}
			winner := cfg.Agents[gameMetric.Winner]
			fmt.Fprintf(w, "agent %d (%s) wins after %d moves in %s\n", winner.ID, winner.Kind, gameMetric.TotalMoves, gameMetric.Duration)
			return nil
		},
	}

	playCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the result")
	playCmd.Flags().BoolVar(&second, "second", false, "let the second agent move first")
	return playCmd
}
