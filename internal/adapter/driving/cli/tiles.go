package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

func (a *app) tilesCmd() *cobra.Command {
	var sort string

	cmd := &cobra.Command{
		Use:     "tiles [collection-id]",
		Short:   "Print the speed-dial tiles of a collection",
		Long:    "Print the tiles of collection-id, or of LINKWARDEN_COLLECTION, pinned first in the selected sort order.",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: a.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID := a.cfg.Settings.CollectionID
			if len(args) == 1 {
				collectionID = args[0]
			}
			if collectionID == "" {
				return errors.New("no collection: pass a collection ID or set LINKWARDEN_COLLECTION")
			}

			mode := a.cfg.Settings.SortMode
			if cmd.Flags().Changed("sort") {
				mode = model.ParseSortMode(sort)
			}

			tiles, err := a.links.Tiles(cmd.Context(), nil, collectionID, mode)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%d tiles, %s)", a.cfg.Settings.CollectionName, len(tiles), mode)))
			for _, t := range tiles {
				marker := " "
				if t.Pinned {
					marker = pinStyle.Render("*")
				}
				fmt.Fprintln(w, markerStyle.Render(marker)+t.Title+"  "+dimStyle.Render(t.URL))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sort, "sort", "", "sort mode: date_desc, date_asc, name_asc or name_desc")
	return cmd
}
