package tui

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pointzapp/bhakti-console/internal/media"
	"github.com/pointzapp/bhakti-console/internal/mutate"
	"github.com/pointzapp/bhakti-console/internal/record"
)

// Form field keys, matching the keys record validation reports errors under.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldTags        = "tags"
	fieldMode        = "mode"
	fieldTitlePhoto  = "titlePhoto"
	fieldPhotos      = "photos"
	fieldAudio       = "audio"
	fieldVideo       = "video"
	fieldRemove      = "removePhotos"
)

// submitFinishedMsg carries a submission's immediate result back to the
// event loop. Toasts travel separately through the notifier channel; field
// errors render inline in the dialog.
type submitFinishedMsg struct {
	fieldErrs record.FieldErrors
	err       error
}

// formModel is a create/edit dialog. It owns a PendingEdit for the whole
// dialog lifetime: staged files survive a failed submit for retry, and every
// preview handle is released when the dialog closes.
type formModel struct {
	entity string
	id     string
	title  string

	edit *media.PendingEdit
	base media.RecordMedia

	inputs []textinput.Model
	keys   []string
	focus  int
	errs   record.FieldErrors
}

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 500
	in.SetValue(value)
	return in
}

func newMantraForm(current *record.Mantra) *formModel {
	f := &formModel{entity: "mantra", title: "New mantra"}
	var title, description, tags string
	if current != nil {
		f.id = current.ID
		f.title = "Edit mantra"
		f.base = current.Media()
		f.edit = media.SeedPendingEdit(f.base)
		title, description, tags = current.Title, current.Description, current.Tags.String()
	} else {
		f.edit = media.NewPendingEdit(media.ModeAudio)
	}

	f.addField(fieldTitle, newInput("title", title))
	f.addField(fieldDescription, newInput("description", description))
	f.addField(fieldTags, newInput("comma-separated tags", tags))
	f.addField(fieldPhotos, newInput("photo paths, comma-separated", ""))
	f.addField(fieldRemove, newInput("existing photo indexes to remove, e.g. 0,2", ""))
	f.addField(fieldAudio, newInput("audio path", ""))
	f.inputs[0].Focus()
	return f
}

func newStoryForm(current *record.Story) *formModel {
	f := &formModel{entity: "story", title: "New story"}
	var title, description, category, tags, mode string
	mode = string(media.ModeAudio)
	if current != nil {
		f.id = current.ID
		f.title = "Edit story"
		f.base = current.Media()
		f.edit = media.SeedPendingEdit(f.base)
		title, description, tags = current.Title, current.Description, current.Tags.String()
		category = string(current.Category)
		mode = string(current.Mode())
	} else {
		f.edit = media.NewPendingEdit(media.ModeAudio)
	}

	f.addField(fieldTitle, newInput("title", title))
	f.addField(fieldDescription, newInput("description", description))
	f.addField(fieldCategory, newInput("mythology | festival | epic | devotional | puranas", category))
	f.addField(fieldTags, newInput("comma-separated tags", tags))
	f.addField(fieldMode, newInput("audio | video", mode))
	f.addField(fieldTitlePhoto, newInput("title photo path", ""))
	f.addField(fieldPhotos, newInput("photo paths, comma-separated (audio mode)", ""))
	f.addField(fieldRemove, newInput("existing photo indexes to remove", ""))
	f.addField(fieldAudio, newInput("audio path", ""))
	f.addField(fieldVideo, newInput("video path", ""))
	f.inputs[0].Focus()
	return f
}

func (f *formModel) addField(key string, in textinput.Model) {
	f.keys = append(f.keys, key)
	f.inputs = append(f.inputs, in)
}

func (f *formModel) value(key string) string {
	for i, k := range f.keys {
		if k == key {
			return strings.TrimSpace(f.inputs[i].Value())
		}
	}
	return ""
}

func (f *formModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		f.setFocus(f.focus + 1)
		return nil
	case tea.KeyShiftTab, tea.KeyUp:
		f.setFocus(f.focus - 1)
		return nil
	default:
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return cmd
	}
}

func (f *formModel) setFocus(next int) {
	f.inputs[f.focus].Blur()
	if next < 0 {
		next = len(f.inputs) - 1
	}
	f.focus = next % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// close releases the dialog's staged preview handles. Called on success and
// on cancel; a failed submit keeps everything for retry.
func (f *formModel) close() {
	f.edit.Close()
}

// submitCmd stages the entered file paths into the pending edit and runs the
// mutation. Validation problems come back as inline field errors; transport
// and server failures surface as toasts via the notifier.
func (f *formModel) submitCmd(mutator *mutate.Mutator) tea.Cmd {
	return func() tea.Msg {
		if err := f.stageFields(); err != nil {
			return submitFinishedMsg{fieldErrs: record.FieldErrors{fieldPhotos: err.Error()}}
		}

		var err error
		if f.entity == "story" {
			draft := record.StoryDraft{
				Title:       f.value(fieldTitle),
				Description: f.value(fieldDescription),
				Category:    record.Category(f.value(fieldCategory)),
				Tags:        f.value(fieldTags),
				Mode:        media.Mode(f.value(fieldMode)),
			}
			if draft.Mode != "" && draft.Mode != f.edit.Mode {
				f.edit.SwitchMode(draft.Mode)
			}
			_, err = mutator.SubmitStory(context.Background(), f.id, draft, f.edit)
		} else {
			draft := record.MantraDraft{
				Title:       f.value(fieldTitle),
				Description: f.value(fieldDescription),
				Tags:        f.value(fieldTags),
			}
			_, err = mutator.SubmitMantra(context.Background(), f.id, draft, f.edit)
		}

		var fieldErrs record.FieldErrors
		if errors.As(err, &fieldErrs) {
			return submitFinishedMsg{fieldErrs: fieldErrs}
		}
		return submitFinishedMsg{err: err}
	}
}

// stageFields syncs the pending edit with the dialog's file path fields.
// Stage replaces whatever was staged before, releasing superseded handles,
// so editing a path and retrying never leaks a preview resource. Photo
// removal is declarative against the record's persisted gallery, applying
// the same index set on every retry.
func (f *formModel) stageFields() error {
	kept, err := removeIndexes(f.base.Photos, f.value(fieldRemove))
	if err != nil {
		return err
	}
	f.edit.Photos.Existing = kept

	if err := stagePaths(&f.edit.Photos, splitPaths(f.value(fieldPhotos))); err != nil {
		return err
	}
	if err := stagePaths(&f.edit.TitlePhoto, splitPaths(f.value(fieldTitlePhoto))); err != nil {
		return err
	}
	if err := stagePaths(&f.edit.Audio, splitPaths(f.value(fieldAudio))); err != nil {
		return err
	}
	return stagePaths(&f.edit.Video, splitPaths(f.value(fieldVideo)))
}

func stagePaths(slot *media.SlotState, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	files := make([]*media.File, 0, len(paths))
	for _, path := range paths {
		staged, err := media.StageFile(path)
		if err != nil {
			for _, s := range files {
				s.Release()
			}
			return err
		}
		files = append(files, staged)
	}
	slot.Stage(files...)
	return nil
}

func splitPaths(joined string) []string {
	if joined == "" {
		return nil
	}
	var paths []string
	for _, p := range strings.Split(joined, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}

// removeIndexes returns keys minus the comma-separated indexes, order kept.
func removeIndexes(keys []media.Key, joined string) ([]media.Key, error) {
	kept := append([]media.Key(nil), keys...)
	if joined == "" {
		return kept, nil
	}
	var indexes []int
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 || idx >= len(keys) {
			return nil, errors.New("invalid photo index: " + part)
		}
		indexes = append(indexes, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indexes)))
	for _, idx := range indexes {
		kept = append(kept[:idx], kept[idx+1:]...)
	}
	return kept, nil
}

func (f *formModel) view(submitting bool) string {
	var b strings.Builder
	b.WriteString(formTitleStyle.Render(f.title) + "\n")

	for i, in := range f.inputs {
		b.WriteString(fieldLabelStyle.Render(f.keys[i]) + " " + in.View() + "\n")
		if msg, ok := f.errs[f.keys[i]]; ok {
			b.WriteString(fieldErrStyle.Render("  "+msg) + "\n")
		}
	}

	if f.edit.HasNewFiles() {
		b.WriteString(helpStyle.Render("staged files pending upload") + "\n")
	}
	if submitting {
		b.WriteString(statusOKStyle.Render("saving...") + "\n")
		b.WriteString(helpStyle.Render("submit disabled while saving"))
	} else {
		b.WriteString(helpStyle.Render("enter save  esc cancel  tab next field"))
	}
	return b.String()
}
