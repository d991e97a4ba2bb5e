package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aistyleguide/internal/prompts"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [name]",
	Short: "Print the JSON schema sent with structured model requests",
	Long: `Without arguments, lists the schema names. With a name, prints that
schema as indented JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprintln(out, strings.Join(prompts.SchemaNames(), "\n"))
			return nil
		}
		s, ok := prompts.Schema(args[0])
		if !ok {
			return fmt.Errorf("unknown schema %q (available: %s)", args[0], strings.Join(prompts.SchemaNames(), ", "))
		}
		fmt.Fprintln(out, s)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
