package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/knobs/pkg/types"
)

// typeJSON is the --json form of one registered type.
type typeJSON struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Render  string   `json:"render"`
	Members []string `json:"members,omitempty"`
}

func newTypesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the supported value types",
		Long:  "List the built-in value types and the enums the store defines.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			// Resolving every definition registers the stored enums.
			keys, err := a.store.Keys()
			if err != nil {
				return sysError(err)
			}
			for _, k := range keys {
				_, _ = a.store.Definition(k.Section, k.Key)
			}

			var out []typeJSON
			for _, t := range a.registry.Types() {
				d, ok := a.registry.Get(t)
				if !ok {
					continue
				}
				tj := typeJSON{Name: t.Name, Kind: t.Kind.String(), Render: d.DefaultKind(nil).String()}
				if t.IsEnum() && t.Name != types.KeyCode.Name {
					tj.Members = t.Members
				}
				out = append(out, tj)
			}

			if s.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tRENDER")
			for _, t := range out {
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.Kind, t.Render)
			}
			return w.Flush()
		},
	}
}
