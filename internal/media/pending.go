package media

// PendingEdit is the ephemeral, per-dialog state of a record's media edit.
// It is created when a create/edit dialog opens, mutated by user add/remove
// actions, consumed exactly once at submit to build the upload request and
// the final reference set, and closed when the dialog closes. A failed submit
// leaves it intact so the user can retry without re-selecting files.
type PendingEdit struct {
	Mode       Mode
	TitlePhoto SlotState
	Photos     SlotState
	Audio      SlotState
	Video      SlotState
}

// NewPendingEdit returns the empty state for a create dialog.
func NewPendingEdit(mode Mode) *PendingEdit {
	return &PendingEdit{Mode: mode}
}

// SeedPendingEdit returns the state for an edit dialog, seeded from the
// record's last persisted media. The declared mode follows the persisted
// media: audio wins when present, video otherwise.
func SeedPendingEdit(existing RecordMedia) *PendingEdit {
	mode := ModeAudio
	if existing.Audio.IsZero() && !existing.Video.IsZero() {
		mode = ModeVideo
	}
	p := &PendingEdit{Mode: mode}
	if !existing.TitlePhoto.IsZero() {
		p.TitlePhoto.Existing = []Key{existing.TitlePhoto}
	}
	p.Photos.Existing = append([]Key(nil), existing.Photos...)
	if !existing.Audio.IsZero() {
		p.Audio.Existing = []Key{existing.Audio}
	}
	if !existing.Video.IsZero() {
		p.Video.Existing = []Key{existing.Video}
	}
	return p
}

// HasNewFiles reports whether any slot holds staged files, i.e. whether a
// submit will need an upload call at all.
func (p *PendingEdit) HasNewFiles() bool {
	return p.TitlePhoto.HasNew() || p.Photos.HasNew() || p.Audio.HasNew() || p.Video.HasNew()
}

// SwitchMode changes the declared media mode. Staged files for the slot the
// mode leaves behind are released immediately; persisted keys for that slot
// are cleared at reconcile time, not here, so cancelling the dialog never
// touches the record.
func (p *PendingEdit) SwitchMode(mode Mode) {
	if mode == p.Mode {
		return
	}
	p.Mode = mode
	switch mode {
	case ModeAudio:
		p.Video.Stage()
	case ModeVideo:
		p.Audio.Stage()
		p.Photos.Stage()
	}
}

// Close releases every staged preview handle. The dialog calls it on success
// and on cancel; after Close the PendingEdit must not be submitted.
func (p *PendingEdit) Close() {
	p.TitlePhoto.releaseNew()
	p.Photos.releaseNew()
	p.Audio.releaseNew()
	p.Video.releaseNew()
}
