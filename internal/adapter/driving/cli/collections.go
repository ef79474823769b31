package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

func (a *app) collectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "collections",
		Short:   "List Linkwarden collections",
		Args:    cobra.NoArgs,
		PreRunE: a.connect,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.links.Collections(cmd.Context(), nil)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d collections", len(records))))
			for _, r := range records {
				c := model.CollectionFromRecord(r)

				marker := " "
				if c.ID == a.cfg.Settings.CollectionID {
					marker = pinStyle.Render("*")
				}
				count := ""
				if c.HasCount {
					count = strconv.Itoa(c.LinkCount)
				}
				fmt.Fprintln(w, markerStyle.Render(marker)+idStyle.Render(c.ID)+"  "+c.Name+" "+countStyle.Render(count))
			}
			return nil
		},
	}
}
