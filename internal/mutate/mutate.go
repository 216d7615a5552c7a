// Package mutate orchestrates record submissions: validate the draft,
// reconcile the pending media edit into an upload plan, call the upload
// gateway when needed, persist the record, and settle. One submission runs at
// a time; the dialog keeps its state on failure so the user can retry.
package mutate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/pointzapp/bhakti-console/internal/api"
	"github.com/pointzapp/bhakti-console/internal/media"
	"github.com/pointzapp/bhakti-console/internal/query"
	"github.com/pointzapp/bhakti-console/internal/record"
)

// ErrSubmitInFlight is returned when a submission starts while another one is
// still running. The UI disables the submit action, this guard catches races.
var ErrSubmitInFlight = errors.New("a submission is already in flight")

// State is the orchestrator's position within one submission.
type State int

const (
	StateIdle State = iota
	StateReconciling
	StateUploading
	StatePersisting
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReconciling:
		return "reconciling"
	case StateUploading:
		return "uploading"
	case StatePersisting:
		return "persisting"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

const (
	entityMantras = "mantras"
	entityStories = "stories"
)

// Mutator runs submissions against the API and keeps the read cache honest.
type Mutator struct {
	client *api.Client
	cache  *query.Cache
	notify Notifier
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	inFlight bool
	onState  func(State)
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithStateFunc registers a callback invoked on every state transition, so
// the UI can show "uploading media" versus "saving".
func WithStateFunc(fn func(State)) Option {
	return func(m *Mutator) { m.onState = fn }
}

// New wires a mutator. A nil notifier falls back to log-only notifications.
func New(client *api.Client, cache *query.Cache, notify Notifier, logger *slog.Logger, opts ...Option) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	if notify == nil {
		notify = &LogNotifier{Logger: logger}
	}
	m := &Mutator{
		client: client,
		cache:  cache,
		notify: notify,
		logger: logger.With(slog.String("component", "mutate")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State reports the current submission state.
func (m *Mutator) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mutator) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrSubmitInFlight
	}
	m.inFlight = true
	return nil
}

func (m *Mutator) end() {
	m.mu.Lock()
	m.inFlight = false
	m.mu.Unlock()
	m.setState(StateIdle)
}

func (m *Mutator) setState(s State) {
	m.mu.Lock()
	m.state = s
	fn := m.onState
	m.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// SubmitMantra validates, reconciles, uploads, and persists one mantra. An
// empty id creates; otherwise it updates. On success the caller closes the
// PendingEdit; on failure the edit is left untouched for retry. Validation
// failures return record.FieldErrors without a toast, the dialog renders them
// inline.
func (m *Mutator) SubmitMantra(ctx context.Context, id string, draft record.MantraDraft, edit *media.PendingEdit) (record.Mantra, error) {
	if err := m.begin(); err != nil {
		return record.Mantra{}, err
	}
	defer m.end()

	create := id == ""
	m.setState(StateReconciling)
	draft.Normalize()
	if err := draft.Validate(edit, create); err != nil {
		return record.Mantra{}, err
	}

	final, err := m.reconcile(ctx, edit)
	if err != nil {
		m.fail(err, "Failed to save mantra")
		return record.Mantra{}, err
	}

	m.setState(StatePersisting)
	payload := draft.Payload(final)
	var saved record.Mantra
	if create {
		saved, err = m.client.Mantras().Create(ctx, payload)
	} else {
		saved, err = m.client.Mantras().Update(ctx, id, payload)
	}
	if err != nil {
		m.fail(err, "Failed to save mantra")
		return record.Mantra{}, err
	}

	m.settle(entityMantras, "Mantra saved")
	return saved, nil
}

// SubmitStory validates, reconciles, uploads, and persists one story. The
// reconciled reference set is re-checked against the story media invariants
// before anything is persisted.
func (m *Mutator) SubmitStory(ctx context.Context, id string, draft record.StoryDraft, edit *media.PendingEdit) (record.Story, error) {
	if err := m.begin(); err != nil {
		return record.Story{}, err
	}
	defer m.end()

	create := id == ""
	m.setState(StateReconciling)
	draft.Normalize()
	if err := draft.Validate(edit, create); err != nil {
		return record.Story{}, err
	}

	final, err := m.reconcile(ctx, edit)
	if err != nil {
		m.fail(err, "Failed to save story")
		return record.Story{}, err
	}
	if err := record.ValidateStoryMedia(final); err != nil {
		m.fail(err, "Failed to save story")
		return record.Story{}, err
	}

	m.setState(StatePersisting)
	payload := draft.Payload(final)
	var saved record.Story
	if create {
		saved, err = m.client.Stories().Create(ctx, payload)
	} else {
		saved, err = m.client.Stories().Update(ctx, id, payload)
	}
	if err != nil {
		m.fail(err, "Failed to save story")
		return record.Story{}, err
	}

	m.settle(entityStories, "Story saved")
	return saved, nil
}

// DeleteMantra removes the record and drops its cached reads.
func (m *Mutator) DeleteMantra(ctx context.Context, id string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.setState(StatePersisting)
	if err := m.client.Mantras().Delete(ctx, id); err != nil {
		m.fail(err, "Failed to delete mantra")
		return err
	}
	m.settle(entityMantras, "Mantra deleted")
	return nil
}

// DeleteStory removes the record and drops its cached reads.
func (m *Mutator) DeleteStory(ctx context.Context, id string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.setState(StatePersisting)
	if err := m.client.Stories().Delete(ctx, id); err != nil {
		m.fail(err, "Failed to delete story")
		return err
	}
	m.settle(entityStories, "Story deleted")
	return nil
}

// reconcile computes the plan and runs the upload when one is needed. With no
// new files the upload step is skipped entirely and the merge works from the
// retained keys alone.
func (m *Mutator) reconcile(ctx context.Context, edit *media.PendingEdit) (media.RecordMedia, error) {
	plan, err := media.ComputePlan(edit)
	if err != nil {
		return media.RecordMedia{}, err
	}

	var result media.UploadResult
	if plan.NeedsUpload {
		m.setState(StateUploading)
		result, err = m.client.Upload(ctx, plan.Upload)
		if err != nil {
			return media.RecordMedia{}, err
		}
	}
	// A persist failure after a successful upload leaves the uploaded objects
	// unreferenced; storage-side garbage collection owns those.
	return plan.Merge(result)
}

func (m *Mutator) settle(entity, msg string) {
	m.setState(StateSettled)
	m.cache.InvalidateEntity(entity)
	m.notify.Success(msg)
}

func (m *Mutator) fail(err error, fallback string) {
	m.setState(StateSettled)
	m.logger.Error("submission failed", slog.Any("error", err))
	m.notify.Error(api.UserMessage(err, fallback))
}
