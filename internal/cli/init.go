package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize knobs storage",
		Long: "Create the configuration and data directories, seed the sample\n" +
			"configuration into an empty store and write a language catalog template.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			seeded, err := a.store.Seed()
			if err != nil {
				return sysError(fmt.Errorf("seed store: %w", err))
			}
			written, err := writeCatalogTemplate(a)
			if err != nil {
				return sysError(fmt.Errorf("write catalog: %w", err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "knobs initialized in %s\n", a.dataDir)
			if seeded > 0 {
				fmt.Fprintf(out, "seeded %d sample keys\n", seeded)
			}
			if written {
				fmt.Fprintf(out, "wrote catalog %s\n", a.catalog.Path())
			}
			return nil
		},
	}
}

// writeCatalogTemplate writes a catalog naming every section and key after
// itself, with the stored descriptions, unless the catalog file exists.
func writeCatalogTemplate(a *app) (bool, error) {
	if _, err := os.Stat(a.catalog.Path()); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	keys, err := a.store.Keys()
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if !a.catalog.Has(k.Section) {
			a.catalog.Set(k.Section, k.Section, "")
		}
		if a.catalog.Has(k.Key) {
			continue
		}
		desc := ""
		if def, err := a.store.Definition(k.Section, k.Key); err == nil {
			desc = def.Description
		}
		a.catalog.Set(k.Key, k.Key, desc)
	}
	return true, a.catalog.Save()
}
