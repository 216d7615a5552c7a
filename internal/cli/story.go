package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pointzapp/bhakti-console/internal/media"
	"github.com/pointzapp/bhakti-console/internal/query"
	"github.com/pointzapp/bhakti-console/internal/record"
)

func newStoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Manage story records",
	}
	cmd.AddCommand(
		newStoryListCmd(),
		newStoryGetCmd(),
		newStoryCreateCmd(),
		newStoryUpdateCmd(),
		newStoryDeleteCmd(),
	)
	return cmd
}

func newStoryListCmd() *cobra.Command {
	var (
		params   record.ListParams
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			params.Category = record.Category(category)
			if params.Limit == 0 {
				params.Limit = a.cfg.Query.PageLimit
			}

			type page struct {
				Items []record.Story
				Page  record.Pagination
			}
			result, err := query.Through(cmd.Context(), a.cache,
				query.ListKey("stories", params.CacheKey(), params.Page),
				func(ctx context.Context) (page, error) {
					items, pg, err := a.client.Stories().List(ctx, params)
					return page{Items: items, Page: pg}, err
				})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range result.Items {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Category, s.Mode())
			}
			printPageFooter(out, result.Page)
			return nil
		},
	}
	addListFlags(cmd, &params)
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	return cmd
}

func newStoryGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one story with resolved media URLs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			s, err := a.client.Stories().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", s.ID)
			fmt.Fprintf(out, "Title:       %s\n", s.Title)
			fmt.Fprintf(out, "Category:    %s\n", s.Category)
			fmt.Fprintf(out, "Mode:        %s\n", s.Mode())
			fmt.Fprintf(out, "Description: %s\n", s.Description)
			fmt.Fprintf(out, "Tags:        %s\n", s.Tags.String())
			printMediaURLs(out, a.resolver, a.cfg.Media.ImageSize, s.Media())
			return nil
		},
	}
}

func newStoryCreateCmd() *cobra.Command {
	var (
		draft          record.StoryDraft
		titlePhotoPath string
		photoPaths     []string
		audioPath      string
		videoPath      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a story from local media files",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if draft.Mode == "" {
				draft.Mode = media.ModeAudio
			}

			edit := media.NewPendingEdit(draft.Mode)
			defer edit.Close()
			if err := stageInto(&edit.TitlePhoto, titlePhotoPath); err != nil {
				return err
			}
			if err := stageInto(&edit.Photos, photoPaths...); err != nil {
				return err
			}
			if err := stageInto(&edit.Audio, audioPath); err != nil {
				return err
			}
			if err := stageInto(&edit.Video, videoPath); err != nil {
				return err
			}

			saved, err := a.mutator.SubmitStory(cmd.Context(), "", draft, edit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created story %s\n", saved.ID)
			return nil
		},
	}
	addStoryDraftFlags(cmd, &draft)
	cmd.Flags().StringVar(&titlePhotoPath, "title-photo", "", "Title photo file")
	cmd.Flags().StringArrayVar(&photoPaths, "photo", nil, "Gallery photo file (audio mode, repeatable, max 10)")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Audio file (audio mode)")
	cmd.Flags().StringVar(&videoPath, "video", "", "Video file (video mode)")
	return cmd
}

func newStoryUpdateCmd() *cobra.Command {
	var (
		draft          record.StoryDraft
		titlePhotoPath string
		photoPaths     []string
		audioPath      string
		videoPath      string
		removePhotos   []int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a story, keeping media that is not replaced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			current, err := a.client.Stories().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			edit := media.SeedPendingEdit(current.Media())
			defer edit.Close()

			mergeStoryDraft(&draft, current, cmd)
			if draft.Mode != edit.Mode {
				// Switching between audio and video clears the other mode's
				// media on save.
				edit.SwitchMode(draft.Mode)
			}

			for _, idx := range removePhotos {
				if err := edit.Photos.RemoveExisting(idx); err != nil {
					return err
				}
			}
			if err := stageInto(&edit.TitlePhoto, titlePhotoPath); err != nil {
				return err
			}
			if err := stageInto(&edit.Photos, photoPaths...); err != nil {
				return err
			}
			if err := stageInto(&edit.Audio, audioPath); err != nil {
				return err
			}
			if err := stageInto(&edit.Video, videoPath); err != nil {
				return err
			}

			saved, err := a.mutator.SubmitStory(cmd.Context(), args[0], draft, edit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated story %s\n", saved.ID)
			return nil
		},
	}
	addStoryDraftFlags(cmd, &draft)
	cmd.Flags().StringVar(&titlePhotoPath, "title-photo", "", "Replacement title photo file")
	cmd.Flags().StringArrayVar(&photoPaths, "photo", nil, "Gallery photo file to append (repeatable)")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Replacement audio file")
	cmd.Flags().StringVar(&videoPath, "video", "", "Replacement video file")
	cmd.Flags().IntSliceVar(&removePhotos, "remove-photo", nil, "Index of an existing photo to remove (repeatable)")
	return cmd
}

func newStoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.mutator.DeleteStory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted story %s\n", args[0])
			return nil
		},
	}
}

func addStoryDraftFlags(cmd *cobra.Command, draft *record.StoryDraft) {
	cmd.Flags().StringVar(&draft.Title, "title", "", "Title")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Description")
	cmd.Flags().StringVar((*string)(&draft.Category), "category", "", "Category (mythology, festival, epic, devotional, puranas)")
	cmd.Flags().StringVar(&draft.Tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVar((*string)(&draft.Mode), "mode", "", "Media mode (audio or video)")
}

func mergeStoryDraft(draft *record.StoryDraft, current record.Story, cmd *cobra.Command) {
	if !cmd.Flags().Changed("title") {
		draft.Title = current.Title
	}
	if !cmd.Flags().Changed("description") {
		draft.Description = current.Description
	}
	if !cmd.Flags().Changed("category") {
		draft.Category = current.Category
	}
	if !cmd.Flags().Changed("tags") {
		draft.Tags = current.Tags.String()
	}
	if !cmd.Flags().Changed("mode") {
		draft.Mode = current.Mode()
	}
}
