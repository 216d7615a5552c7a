package media

import "fmt"

// SlotState tracks one media attachment point (title photo, gallery, audio or
// video) while an edit dialog is open: the persisted keys the user has kept,
// and any newly staged files not yet uploaded. Whether an upload is needed is
// derived from New; there is no separate flag to keep in sync.
type SlotState struct {
	Existing []Key
	New      []*File
}

// HasNew reports whether the slot holds staged files awaiting upload.
func (s *SlotState) HasNew() bool {
	return len(s.New) > 0
}

// FirstExisting returns the single retained key for scalar slots
// (title photo, audio, video), or "" when none is retained.
func (s *SlotState) FirstExisting() Key {
	if len(s.Existing) == 0 {
		return ""
	}
	return s.Existing[0]
}

// RemoveExisting drops the retained key at index. Removal takes effect in the
// final payload whether or not new files are uploaded.
func (s *SlotState) RemoveExisting(index int) error {
	if index < 0 || index >= len(s.Existing) {
		return fmt.Errorf("remove existing media: index %d out of range (%d retained)", index, len(s.Existing))
	}
	s.Existing = append(s.Existing[:index], s.Existing[index+1:]...)
	return nil
}

// ClearExisting drops every retained key.
func (s *SlotState) ClearExisting() {
	s.Existing = nil
}

// Stage replaces the slot's staged files, releasing any it already held.
func (s *SlotState) Stage(files ...*File) {
	s.releaseNew()
	s.New = append([]*File(nil), files...)
}

// AddNew stages additional files without dropping the ones already staged.
func (s *SlotState) AddNew(files ...*File) {
	s.New = append(s.New, files...)
}

// RemoveNew releases and drops the staged file at index.
func (s *SlotState) RemoveNew(index int) error {
	if index < 0 || index >= len(s.New) {
		return fmt.Errorf("remove staged media: index %d out of range (%d staged)", index, len(s.New))
	}
	s.New[index].Release()
	s.New = append(s.New[:index], s.New[index+1:]...)
	return nil
}

func (s *SlotState) releaseNew() {
	for _, f := range s.New {
		f.Release()
	}
	s.New = nil
}
