package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/babyreminder/internal/legal"
)

// legalCmd shows the terms of use and disclaimer.
var legalCmd = &cobra.Command{
	Use:       "legal [terms|privacy|disclaimer]",
	Short:     "Show terms of use, privacy policy and disclaimer",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: legal.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := legal.Names()
		if len(args) == 1 {
			names = args
		}
		return showDocuments(names)
	},
}

// privacyCmd is a shortcut for "legal privacy".
var privacyCmd = &cobra.Command{
	Use:   "privacy",
	Short: "Show the privacy policy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showDocuments([]string{legal.Privacy})
	},
}

func init() {
	rootCmd.AddCommand(legalCmd)
	rootCmd.AddCommand(privacyCmd)
}

func showDocuments(names []string) error {
	if ctx.IsJSON() {
		docs := make([]map[string]string, 0, len(names))
		for _, name := range names {
			md, err := legal.Markdown(name)
			if err != nil {
				return err
			}
			docs = append(docs, map[string]string{"document": name, "markdown": md})
		}
		return ctx.Formatter.JSON(map[string]any{"documents": docs})
	}

	style := ""
	if !ctx.Formatter.IsColorEnabled() {
		style = "notty"
	}
	for i, name := range names {
		out, err := legal.Render(name, 80, style)
		if err != nil {
			return err
		}
		if i > 0 {
			ctx.Formatter.Println("")
		}
		ctx.Formatter.Println(out)
	}
	return nil
}
