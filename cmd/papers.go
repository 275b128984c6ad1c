package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ByLCY/quill/fonts"
	"github.com/ByLCY/quill/layout"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List paper presets and built-in fonts",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCLASS\tWIDTH\tHEIGHT")
		for _, p := range layout.Papers() {
			fmt.Fprintf(w, "%s\t%s\t%.1fmm\t%.1fmm\n", p.Name, p.Class, p.Width*layout.PtToMm, p.Height*layout.PtToMm)
		}
		w.Flush()
		fmt.Println()
		fmt.Println("Built-in fonts (builtin:<name>):")
		for _, name := range fonts.Names() {
			fmt.Printf("  %s\n", name)
		}
	},
}

func init() {
	rootCmd.AddCommand(papersCmd)
}
