package cli

import (
	"a3kd/internal/api"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Catalog is the combined teacher and student model lists.
type Catalog struct {
	Teachers []api.ModelOption `json:"teachers"`
	Students []api.ModelOption `json:"students"`
}

// fetchCatalog loads both lists concurrently. Either failure fails the call.
func fetchCatalog(cmd *cobra.Command, c api.Client) (Catalog, error) {
	var cat Catalog
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		cat.Teachers, err = c.ListTeachers(ctx)

		return err
	})
	g.Go(func() error {
		var err error
		cat.Students, err = c.ListStudents(ctx)

		return err
	})
	if err := g.Wait(); err != nil {
		return Catalog{}, err
	}

	return cat, nil
}

func NewModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List teacher and student models",
		Long:  `List the teacher and student models an experiment may use.`,
		Args:  exactArgs(0),
		RunE: run(func(cmd *cobra.Command, c api.Client, _ []string) error {
			cat, err := fetchCatalog(cmd, c)
			if err != nil {
				return err
			}
			logJSONCmd(cmd, cat)

			return nil
		}),
	}
}
