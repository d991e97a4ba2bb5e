package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aistyleguide/internal/engine"
)

var templateDir string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List document templates and the section tokens each one uses",
	Long: `Loads every built-in template, preferring files in --dir when given,
and prints its {{token}} names. Use it to check an override directory
before pointing TEMPLATE_DIR at it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := engine.New(templateDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range eng.Names() {
			tokens, err := eng.Tokens(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\n", name, strings.Join(tokens, ", "))
		}
		return nil
	},
}

func init() {
	templatesCmd.Flags().StringVar(&templateDir, "dir", "", "Override directory to check")
	rootCmd.AddCommand(templatesCmd)
}
