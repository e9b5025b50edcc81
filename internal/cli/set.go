package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/knobs/pkg/entry"
	"github.com/mesh-intelligence/knobs/pkg/surface"
)

func newSetCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "set <section> <key> <value>",
		Short: "Validate and store a new value",
		Long: "Parse value with the key's type, check it against the key's constraint\n" +
			"and save it. Range constraints clamp; list constraints reject non-members.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.write(cmd, args[0], args[1], func(b *entry.Builder) error {
				return b.SetString(args[2])
			})
		},
	}
}

func newResetCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <section> <key>",
		Short: "Restore the default value of a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.write(cmd, args[0], args[1], (*entry.Builder).Reset)
		},
	}
}

// write applies edit to one entry, saves the surface and prints the stored
// value.
func (s *session) write(cmd *cobra.Command, section, key string, edit func(*entry.Builder) error) error {
	a, err := s.open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sur, err := a.assemble()
	if err != nil {
		return err
	}
	b, err := lookupEntry(sur, section, key)
	if err != nil {
		return err
	}
	if err := edit(b); err != nil {
		return userError(fmt.Errorf("%s.%s: %w", section, key, err))
	}
	if err := save(sur); err != nil {
		return err
	}
	a.log.Debug().Str("section", section).Str("key", key).Str("value", b.String()).Msg("saved")

	if s.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), newEntryJSON(section, key, b))
	}
	fmt.Fprintln(cmd.OutOrStdout(), b.String())
	return nil
}

func save(sur *surface.Surface) error {
	if sur.Saved() {
		return nil
	}
	if err := sur.Save(); err != nil {
		return sysError(fmt.Errorf("save: %w", err))
	}
	return nil
}
