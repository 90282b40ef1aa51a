package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/breathe/internal/education"
	"github.com/zjrosen/breathe/internal/ui/styles"
)

const learnRenderWidth = 80

var learnCmd = &cobra.Command{
	Use:   "learn [topic]",
	Short: "Read about the science and safety of breath holds",
	Long:  `Read the built-in education cards: breathing technique, CO2 tolerance, safety rules, and how to progress. Run without arguments to list topics.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLearn,
}

func init() {
	rootCmd.AddCommand(learnCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for _, card := range education.Cards() {
			fmt.Fprintf(out, "%s%s\n",
				styles.StatLabelStyle.Render(card.Slug),
				styles.StatValueStyle.Render(card.Title))
		}
		fmt.Fprintln(out, styles.FooterStyle.Render("breathe learn <topic> to read one"))
		return nil
	}

	card, ok := education.BySlug(args[0])
	if !ok {
		return fmt.Errorf("unknown topic %q, run 'breathe learn' for the list", args[0])
	}

	renderer, err := education.NewRenderer(learnRenderWidth, cfg.UI.MarkdownStyle)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	rendered, err := renderer.Render(card.Body)
	if err != nil {
		return fmt.Errorf("rendering %q: %w", card.Slug, err)
	}
	fmt.Fprint(out, rendered)
	return nil
}
