package cv

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Export stages reported through PDFStatus.
const (
	StagePreparing  = "preparing"
	StageRendering  = "rendering"
	StageFinalizing = "finalizing"
)

// PDFStatus tracks an export in progress.
type PDFStatus struct {
	IsGenerating bool   `json:"isGenerating"`
	Progress     int    `json:"progress"`
	Stage        string `json:"stage,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Status is the transient state exposed to the builder UI.
type Status struct {
	IsSaving          bool      `json:"isSaving"`
	HasUnsavedChanges bool      `json:"hasUnsavedChanges"`
	Error             string    `json:"error,omitempty"`
	PDF               PDFStatus `json:"pdfGeneration"`
	LastSavedAt       time.Time `json:"lastSavedAt,omitempty"`
	Revision          uint64    `json:"revision"`
}

// EventType names a store event.
type EventType string

const (
	EventChanged        EventType = "document.changed"
	EventLoaded         EventType = "document.loaded"
	EventReset          EventType = "document.reset"
	EventSaveStarted    EventType = "save.started"
	EventSaveSucceeded  EventType = "save.succeeded"
	EventSaveFailed     EventType = "save.failed"
	EventExportProgress EventType = "export.progress"
	EventExportFinished EventType = "export.finished"
	EventExportFailed   EventType = "export.failed"
)

// Event is delivered to subscribers after the state change is applied.
type Event struct {
	Type     EventType
	Section  SectionType
	Revision uint64
	Status   Status
	Err      error
}

// NewDocumentID returns a random document id.
func NewDocumentID() string {
	return uuid.NewString()
}

// Store owns the live document. All reads return copies; all writes go
// through validated mutators.
type Store struct {
	Persistence Persistence
	Exporter    *Exporter
	Registry    *SectionRegistry
	Logger      Logger
	Now         func() time.Time

	mu            sync.Mutex
	doc           Document
	revision      uint64
	savedRevision uint64
	saving        *saveCall
	status        Status
	subs          map[int]func(Event)
	nextSub       int
}

type saveCall struct {
	done     chan struct{}
	revision uint64
	err      error
}

// NewStore creates a store holding doc. The document starts clean.
func NewStore(doc Document, persistence Persistence, exporter *Exporter) *Store {
	if doc.ID == "" {
		doc.ID = NewDocumentID()
	}
	return &Store{
		Persistence: persistence,
		Exporter:    exporter,
		Registry:    DefaultRegistry(),
		Logger:      NopLogger{},
		Now:         time.Now,
		doc:         doc.Normalize(),
		subs:        make(map[int]func(Event)),
	}
}

func (s *Store) registry() *SectionRegistry {
	if s.Registry == nil {
		return DefaultRegistry()
	}
	return s.Registry
}

func (s *Store) logger() Logger {
	if s.Logger == nil {
		return NopLogger{}
	}
	return s.Logger
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC().Round(0)
	}
	return s.Now().UTC().Round(0)
}

// Snapshot returns a copy of the live document.
func (s *Store) Snapshot() Document {
	if s == nil {
		return Document{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Status returns the current transient state.
func (s *Store) Status() Status {
	if s == nil {
		return Status{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Store) statusLocked() Status {
	st := s.status
	st.HasUnsavedChanges = s.revision > s.savedRevision
	st.Revision = s.revision
	return st
}

// Subscribe registers fn for store events and returns an unsubscribe func.
func (s *Store) Subscribe(fn func(Event)) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]func(Event))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(evt Event) {
	s.mu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(evt)
	}
}

// mutate validates change's result for typ and commits it atomically.
func (s *Store) mutate(typ SectionType, change func(Section) (Section, error)) (Document, error) {
	if s == nil {
		return Document{}, NewError(KindInternal, "store is nil", nil)
	}
	s.mu.Lock()
	current, _ := s.doc.Section(typ)
	current.Type = typ
	next, err := change(current.Clone())
	if err == nil {
		err = validateSectionWith(s.registry(), next)
	}
	if err != nil {
		s.mu.Unlock()
		s.logger().Debugf("cv: rejected %s mutation: %v", typ, err)
		return Document{}, err
	}
	s.doc = s.doc.WithSection(normalizeSection(next))
	evt := s.commitLocked(EventChanged, typ)
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	s.emit(evt)
	return snapshot, nil
}

func (s *Store) commitLocked(typ EventType, section SectionType) Event {
	s.revision++
	return Event{Type: typ, Section: section, Revision: s.revision, Status: s.statusLocked()}
}

// UpdatePersonal replaces the personal details.
func (s *Store) UpdatePersonal(p Personal) (Document, error) {
	if s == nil {
		return Document{}, NewError(KindInternal, "store is nil", nil)
	}
	if err := ValidatePersonal(p); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	s.doc.Personal = p
	evt := s.commitLocked(EventChanged, SectionPersonal)
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	s.emit(evt)
	return snapshot, nil
}

// UpdateSummary replaces the summary text.
func (s *Store) UpdateSummary(summary string) (Document, error) {
	return s.mutate(SectionSummary, func(sec Section) (Section, error) {
		sec.Summary = summary
		return sec, nil
	})
}

// UpdateSkills replaces the skill list.
func (s *Store) UpdateSkills(skills []string) (Document, error) {
	return s.mutate(SectionSkills, func(sec Section) (Section, error) {
		sec.Skills = append([]string(nil), skills...)
		return sec, nil
	})
}

// AddSkill appends a skill.
func (s *Store) AddSkill(skill string) (Document, error) {
	return addItem(s, skillList, skill)
}

// RemoveSkill removes the skill at index.
func (s *Store) RemoveSkill(index int) (Document, error) {
	return removeItem(s, skillList, index)
}

// MoveSkill moves a skill to a new position.
func (s *Store) MoveSkill(from, to int) (Document, error) {
	return moveItem(s, skillList, from, to)
}

// UpdateReferences replaces the references section.
func (s *Store) UpdateReferences(refs References) (Document, error) {
	return s.mutate(SectionReferences, func(sec Section) (Section, error) {
		refs.Contacts = append([]ReferenceContact(nil), refs.Contacts...)
		sec.References = &refs
		return sec, nil
	})
}

// ClearReferences removes the references payload.
func (s *Store) ClearReferences() (Document, error) {
	return s.mutate(SectionReferences, func(sec Section) (Section, error) {
		sec.References = nil
		return sec, nil
	})
}

// SetTemplate records the selected template.
func (s *Store) SetTemplate(templateID string) (Document, error) {
	if s == nil {
		return Document{}, NewError(KindInternal, "store is nil", nil)
	}
	if templateID == "" {
		return Document{}, NewValidationError("invalid template", fieldError("templateId", "cannot be blank", templateID))
	}
	s.mu.Lock()
	if s.doc.TemplateID == templateID {
		snapshot := s.doc.Clone()
		s.mu.Unlock()
		return snapshot, nil
	}
	s.doc.TemplateID = templateID
	evt := s.commitLocked(EventChanged, "")
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	s.emit(evt)
	return snapshot, nil
}

// ToggleSectionVisibility flips the visibility of a hideable section.
func (s *Store) ToggleSectionVisibility(typ SectionType) (Document, error) {
	if s == nil {
		return Document{}, NewError(KindInternal, "store is nil", nil)
	}
	s.mu.Lock()
	visible := s.registry().IsVisible(s.doc.SectionVisibility, typ)
	s.mu.Unlock()
	return s.SetSectionVisibility(typ, !visible)
}

// SetSectionVisibility shows or hides a section.
func (s *Store) SetSectionVisibility(typ SectionType, visible bool) (Document, error) {
	if s == nil {
		return Document{}, NewError(KindInternal, "store is nil", nil)
	}
	meta, ok := s.registry().Lookup(typ)
	if !ok {
		return Document{}, NewValidationError("invalid section", fieldError("section", "unknown section type", string(typ)))
	}
	if !meta.Hideable {
		return Document{}, NewValidationError("invalid section", fieldError("section", fmt.Sprintf("%s cannot be hidden", meta.Label), string(typ)))
	}

	s.mu.Lock()
	if s.doc.SectionVisibility == nil {
		s.doc.SectionVisibility = make(map[SectionType]bool)
	}
	s.doc.SectionVisibility[typ] = visible
	evt := s.commitLocked(EventChanged, typ)
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	s.emit(evt)
	return snapshot, nil
}

// Reset replaces the document with defaults, keeping its id. Callers are
// expected to confirm with the user first.
func (s *Store) Reset() Document {
	if s == nil {
		return Document{}
	}
	s.mu.Lock()
	s.doc = NewDocument(s.doc.ID)
	evt := s.commitLocked(EventReset, "")
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	s.logger().Infof("cv: document %s reset", snapshot.ID)
	s.emit(evt)
	return snapshot
}

// ConfirmLeave reports whether the user may navigate away. confirm is only
// consulted when there are unsaved changes.
func (s *Store) ConfirmLeave(confirm func() bool) bool {
	if !s.Status().HasUnsavedChanges {
		return true
	}
	if confirm == nil {
		return false
	}
	return confirm()
}

// Load replaces the live document with the persisted one.
func (s *Store) Load(ctx context.Context, id string) (Document, error) {
	if s == nil {
		return Document{}, NewError(KindInternal, "store is nil", nil)
	}
	if s.Persistence == nil {
		return Document{}, NewError(KindInternal, "persistence is not configured", nil)
	}
	if id == "" {
		return Document{}, NewValidationError("invalid document id", fieldError("id", "cannot be blank", id))
	}

	doc, err := s.Persistence.Load(ctx, id)
	if err != nil {
		if KindFromError(err) == KindNotFound {
			return Document{}, NewError(KindNotFound, fmt.Sprintf("document %q not found", id), err)
		}
		return Document{}, NewError(KindPersistence, "load failed", err)
	}

	s.mu.Lock()
	s.doc = doc.Normalize()
	evt := s.commitLocked(EventLoaded, "")
	s.savedRevision = s.revision
	s.status.Error = ""
	evt.Status = s.statusLocked()
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	s.emit(evt)
	return snapshot, nil
}

// Save persists the latest snapshot. Saves are serialized: a call made
// while another save is in flight waits for it and only issues a new
// persistence call if that save did not cover its revision.
func (s *Store) Save(ctx context.Context) error {
	if s == nil {
		return NewError(KindInternal, "store is nil", nil)
	}
	if s.Persistence == nil {
		return NewError(KindInternal, "persistence is not configured", nil)
	}

	for {
		s.mu.Lock()
		want := s.revision
		if s.savedRevision >= want {
			s.mu.Unlock()
			return nil
		}
		if call := s.saving; call != nil {
			s.mu.Unlock()
			select {
			case <-call.done:
			case <-ctx.Done():
				return ctx.Err()
			}
			if call.err != nil && call.revision >= want {
				return call.err
			}
			continue
		}

		call := &saveCall{done: make(chan struct{}), revision: want}
		s.saving = call
		snapshot := s.doc.Clone()
		snapshot.UpdatedAt = s.now()
		s.status.IsSaving = true
		started := Event{Type: EventSaveStarted, Revision: want, Status: s.statusLocked()}
		s.mu.Unlock()

		s.emit(started)
		err := s.Persistence.Save(ctx, snapshot)
		finished := s.finishSave(call, snapshot, err)
		s.emit(finished)
		return call.err
	}
}

func (s *Store) finishSave(call *saveCall, snapshot Document, err error) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saving = nil
	s.status.IsSaving = false
	if err != nil {
		call.err = NewError(KindPersistence, "save failed", err)
		s.status.Error = call.err.Error()
		s.logger().Errorf("cv: save document %s revision %d failed: %v", snapshot.ID, call.revision, err)
		close(call.done)
		return Event{Type: EventSaveFailed, Revision: call.revision, Status: s.statusLocked(), Err: call.err}
	}

	if call.revision > s.savedRevision {
		s.savedRevision = call.revision
	}
	if s.revision == call.revision {
		s.doc.UpdatedAt = snapshot.UpdatedAt
	}
	s.status.Error = ""
	s.status.LastSavedAt = snapshot.UpdatedAt
	s.logger().Debugf("cv: saved document %s revision %d", snapshot.ID, call.revision)
	close(call.done)
	return Event{Type: EventSaveSucceeded, Revision: call.revision, Status: s.statusLocked()}
}

// DownloadPDF exports the current snapshot to w. It never changes dirty
// state; a second export while one is running fails with a conflict.
func (s *Store) DownloadPDF(ctx context.Context, templateID string, w io.Writer) (ExportResult, error) {
	if s == nil {
		return ExportResult{}, NewError(KindInternal, "store is nil", nil)
	}
	if s.Exporter == nil {
		return ExportResult{}, NewError(KindInternal, "exporter is not configured", nil)
	}

	s.mu.Lock()
	if s.status.PDF.IsGenerating {
		s.mu.Unlock()
		return ExportResult{}, NewError(KindConflict, "an export is already in progress", nil)
	}
	s.status.PDF = PDFStatus{IsGenerating: true, Stage: StagePreparing}
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	if templateID == "" {
		templateID = snapshot.TemplateID
	}

	result, err := s.Exporter.Export(ctx, snapshot, templateID, w, s.reportExport)

	s.mu.Lock()
	if err != nil {
		s.status.PDF = PDFStatus{Progress: s.status.PDF.Progress, Stage: s.status.PDF.Stage, Error: err.Error()}
	} else {
		s.status.PDF = PDFStatus{Progress: 100, Stage: StageFinalizing}
	}
	evt := Event{Type: EventExportFinished, Revision: s.revision, Status: s.statusLocked(), Err: err}
	if err != nil {
		evt.Type = EventExportFailed
	}
	s.mu.Unlock()

	s.emit(evt)
	return result, err
}

func (s *Store) reportExport(percent int, stage string) {
	s.mu.Lock()
	s.status.PDF.Progress = percent
	s.status.PDF.Stage = stage
	evt := Event{Type: EventExportProgress, Revision: s.revision, Status: s.statusLocked()}
	s.mu.Unlock()
	s.emit(evt)
}
