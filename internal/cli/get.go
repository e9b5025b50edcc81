package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get <section> <key>",
		Short: "Print the value of a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			sur, err := a.assemble()
			if err != nil {
				return err
			}
			b, err := lookupEntry(sur, args[0], args[1])
			if err != nil {
				return err
			}

			if s.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), newEntryJSON(args[0], args[1], b))
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.String())
			return nil
		},
	}
}

func newOptionsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "options <section> <key>",
		Short: "List the values a key offers",
		Long:  "List the values a key offers. Keys that accept any value print nothing.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			sur, err := a.assemble()
			if err != nil {
				return err
			}
			b, err := lookupEntry(sur, args[0], args[1])
			if err != nil {
				return err
			}

			options := b.Options()
			if s.flags.jsonMode {
				if options == nil {
					options = []string{}
				}
				return writeJSON(cmd.OutOrStdout(), options)
			}
			current := b.String()
			for _, o := range options {
				marker := " "
				if o == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, o)
			}
			return nil
		},
	}
}
