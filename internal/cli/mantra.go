package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pointzapp/bhakti-console/internal/media"
	"github.com/pointzapp/bhakti-console/internal/query"
	"github.com/pointzapp/bhakti-console/internal/record"
)

func newMantraCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mantra",
		Short: "Manage mantra records",
	}
	cmd.AddCommand(
		newMantraListCmd(),
		newMantraGetCmd(),
		newMantraCreateCmd(),
		newMantraUpdateCmd(),
		newMantraDeleteCmd(),
	)
	return cmd
}

func newMantraListCmd() *cobra.Command {
	var params record.ListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mantras",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if params.Limit == 0 {
				params.Limit = a.cfg.Query.PageLimit
			}

			type page struct {
				Items []record.Mantra
				Page  record.Pagination
			}
			result, err := query.Through(cmd.Context(), a.cache,
				query.ListKey("mantras", params.CacheKey(), params.Page),
				func(ctx context.Context) (page, error) {
					items, pg, err := a.client.Mantras().List(ctx, params)
					return page{Items: items, Page: pg}, err
				})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range result.Items {
				fmt.Fprintf(out, "%s\t%s\t%d photos\t%s\n", m.ID, m.Title, len(m.Photos), m.Tags.String())
			}
			printPageFooter(out, result.Page)
			return nil
		},
	}
	addListFlags(cmd, &params)
	return cmd
}

func newMantraGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one mantra with resolved media URLs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			m, err := a.client.Mantras().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", m.ID)
			fmt.Fprintf(out, "Title:       %s\n", m.Title)
			fmt.Fprintf(out, "Description: %s\n", m.Description)
			fmt.Fprintf(out, "Tags:        %s\n", m.Tags.String())
			printMediaURLs(out, a.resolver, a.cfg.Media.ImageSize, m.Media())
			return nil
		},
	}
}

func newMantraCreateCmd() *cobra.Command {
	var (
		draft      record.MantraDraft
		photoPaths []string
		audioPath  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a mantra from local media files",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			edit := media.NewPendingEdit(media.ModeAudio)
			defer edit.Close()
			if err := stageInto(&edit.Photos, photoPaths...); err != nil {
				return err
			}
			if err := stageInto(&edit.Audio, audioPath); err != nil {
				return err
			}

			saved, err := a.mutator.SubmitMantra(cmd.Context(), "", draft, edit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created mantra %s\n", saved.ID)
			return nil
		},
	}
	addMantraDraftFlags(cmd, &draft)
	cmd.Flags().StringArrayVar(&photoPaths, "photo", nil, "Photo file (repeatable, max 10)")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Audio file")
	return cmd
}

func newMantraUpdateCmd() *cobra.Command {
	var (
		draft        record.MantraDraft
		photoPaths   []string
		audioPath    string
		removePhotos []int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a mantra, keeping media that is not replaced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			current, err := a.client.Mantras().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			edit := media.SeedPendingEdit(current.Media())
			defer edit.Close()
			for _, idx := range removePhotos {
				if err := edit.Photos.RemoveExisting(idx); err != nil {
					return err
				}
			}
			if err := stageInto(&edit.Photos, photoPaths...); err != nil {
				return err
			}
			if err := stageInto(&edit.Audio, audioPath); err != nil {
				return err
			}

			mergeMantraDraft(&draft, current, cmd)
			saved, err := a.mutator.SubmitMantra(cmd.Context(), args[0], draft, edit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated mantra %s\n", saved.ID)
			return nil
		},
	}
	addMantraDraftFlags(cmd, &draft)
	cmd.Flags().StringArrayVar(&photoPaths, "photo", nil, "Photo file to append (repeatable)")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Replacement audio file")
	cmd.Flags().IntSliceVar(&removePhotos, "remove-photo", nil, "Index of an existing photo to remove (repeatable)")
	return cmd
}

func newMantraDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a mantra",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.mutator.DeleteMantra(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted mantra %s\n", args[0])
			return nil
		},
	}
}

func addMantraDraftFlags(cmd *cobra.Command, draft *record.MantraDraft) {
	cmd.Flags().StringVar(&draft.Title, "title", "", "Title")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Description")
	cmd.Flags().StringVar(&draft.Tags, "tags", "", "Comma-separated tags")
}

// mergeMantraDraft backfills fields the user did not pass from the current
// record, so an update touches only what changed.
func mergeMantraDraft(draft *record.MantraDraft, current record.Mantra, cmd *cobra.Command) {
	if !cmd.Flags().Changed("title") {
		draft.Title = current.Title
	}
	if !cmd.Flags().Changed("description") {
		draft.Description = current.Description
	}
	if !cmd.Flags().Changed("tags") {
		draft.Tags = current.Tags.String()
	}
}

func addListFlags(cmd *cobra.Command, params *record.ListParams) {
	cmd.Flags().StringVar(&params.Search, "search", "", "Search in title and tags")
	cmd.Flags().IntVar(&params.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&params.SortBy, "sort-by", "", "Sort field (e.g. createdAt)")
	cmd.Flags().StringVar(&params.SortOrder, "sort-order", "", "asc or desc")
}

// stageInto stages local files into a slot, skipping empty paths.
func stageInto(slot *media.SlotState, paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		f, err := media.StageFile(path)
		if err != nil {
			return err
		}
		slot.AddNew(f)
	}
	return nil
}

func printPageFooter(out io.Writer, page record.Pagination) {
	if page.Total == 0 {
		fmt.Fprintln(out, "No records found")
		return
	}
	fmt.Fprintf(out, "Page %d/%d (%d total)\n", page.Page, page.TotalPages, page.Total)
}

func printMediaURLs(out io.Writer, resolver *media.URLResolver, size int, m media.RecordMedia) {
	if !m.TitlePhoto.IsZero() {
		fmt.Fprintf(out, "Title photo: %s\n", resolver.Image(m.TitlePhoto, size))
	}
	for i, key := range m.Photos {
		fmt.Fprintf(out, "Photo %d:     %s\n", i+1, resolver.Image(key, size))
	}
	if !m.Audio.IsZero() {
		fmt.Fprintf(out, "Audio:       %s\n", resolver.Audio(m.Audio))
	}
	if !m.Video.IsZero() {
		fmt.Fprintf(out, "Video:       %s\n", resolver.Video(m.Video))
	}
}
