package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/knobs/internal/render"
)

func newShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [section]",
		Short: "Display every entry, or the entries of one section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := ""
			if len(args) == 1 {
				section = args[0]
			}

			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			sur, err := a.assemble()
			if err != nil {
				return err
			}
			c, ok := sur.Category(section)
			if section != "" && !ok {
				return userError(fmt.Errorf("unknown section %q", section))
			}

			out := cmd.OutOrStdout()
			if s.flags.jsonMode {
				return writeJSON(out, surfaceJSON(sur, section))
			}
			t := render.NewTerminal(render.DefaultStyles())
			if section != "" {
				err = render.RenderCategory(out, c, t)
			} else {
				err = render.RenderSurface(out, sur, t)
			}
			if err != nil {
				return sysError(err)
			}
			return nil
		},
	}
}
