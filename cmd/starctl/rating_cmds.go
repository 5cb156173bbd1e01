package main

import (
	"fmt"

	"github.com/gabriel/starfield/internal/rating"
	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	var maxStars int

	cmd := &cobra.Command{
		Use:   "normalize <raw>",
		Short: "Coerce a raw value to a stored rating",
		Long:  `Prints the integer a raw input would be stored as, or "absent".`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := rating.Normalize(args[0], maxStars)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), value.String())
			return err
		},
	}
	cmd.Flags().IntVar(&maxStars, "max", 5, "maximum number of stars")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		cfg       rating.Config
		hideEmpty bool
	)

	cmd := &cobra.Command{
		Use:   "render <value>",
		Short: "Render a rating the way listings show it",
		Long:  `Use "-" or an empty string for an unrated value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]
			if raw == "-" {
				raw = ""
			}
			cfg.ShowEmptyStars = !hideEmpty
			value := rating.Normalize(raw, cfg.MaxStars)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), rating.Render(value, cfg))
			return err
		},
	}
	cmd.Flags().IntVar(&cfg.MaxStars, "max", 5, "maximum number of stars")
	cmd.Flags().BoolVar(&hideEmpty, "hide-empty", false, "omit empty stars")
	return cmd
}

func newBoundsCmd() *cobra.Command {
	var (
		maxStars int
		check    string
	)

	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Print the validation bounds of a field, optionally checking a value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bounds := rating.ValidationBounds(maxStars)
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "min=%d max=%d integer=%t\n", bounds.Min, bounds.Max, bounds.IntegerOnly); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(out, rating.MutationDescription(maxStars)); err != nil {
				return err
			}

			if !cmd.Flags().Changed("check") {
				return nil
			}
			if err := bounds.Check(check); err != nil {
				return fmt.Errorf("value %q %w", check, err)
			}
			_, err := fmt.Fprintf(out, "value %q ok\n", check)
			return err
		},
	}
	cmd.Flags().IntVar(&maxStars, "max", 5, "maximum number of stars")
	cmd.Flags().StringVar(&check, "check", "", "value to check against the bounds")
	return cmd
}
