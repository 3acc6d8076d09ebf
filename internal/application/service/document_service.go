// Package service contains the document controller: the single owner of the
// live project and the component that drives the interpreter, renderer, and
// store in response to signals.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"image/draw"
	"time"

	"github.com/oklog/ulid/v2"

	"gnartgen/internal/domain/model/command"
	"gnartgen/internal/domain/model/script"
	"gnartgen/internal/domain/repository"
)

// ErrSaveReopenMismatch reports the consistency hazard where a save-as copy
// succeeded but reopening the new file failed: a file now exists on disk
// that the controller is not bound to.
var ErrSaveReopenMismatch = errors.New("save succeeded but reopen failed")

// UntitledName is the display title of a project with no backing file.
const UntitledName = "untitled"

// Interpreter evaluates script source into a command sequence.
type Interpreter interface {
	Eval(ctx context.Context, source string) (command.Sequence, error)
}

// Renderer paints a command sequence onto a surface and produces thumbnails.
type Renderer interface {
	Render(dst draw.Image, seq command.Sequence)
	Thumbnail(seq command.Sequence, width, height int) ([]byte, error)
}

// StoreFactory opens project stores. The controller goes through a factory
// so it never needs to know which driver backs the store.
type StoreFactory interface {
	OpenMemory() (repository.ScriptRepository, error)
	OpenFile(path string) (repository.ScriptRepository, error)
}

// Logger is the narrow logging surface the controller needs. The cli
// package's leveled logger satisfies it.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}

// DocumentService is the document controller contract. Every operation is
// all-or-nothing with respect to the externally observable project binding:
// a reported failure never leaves the controller bound to a different store
// than before the call.
type DocumentService interface {
	// NewProject discards the current project (closing its store handle)
	// and binds a fresh empty in-memory one. A schema failure here leaves
	// the controller with no usable project and is returned for the caller
	// to treat as fatal.
	NewProject() error

	// Open replaces the current project with the store at path. On failure
	// the current project is left untouched.
	Open(path string) error

	// SaveAs copies the current store to path atomically and rebinds the
	// controller to the new file. A copy failure leaves the in-memory
	// project active and unsaved; a reopen failure after a successful copy
	// is reported as ErrSaveReopenMismatch.
	SaveAs(ctx context.Context, path string) error

	// RunScript evaluates source and, on success, renders the resulting
	// sequence onto surface. On failure the surface is untouched and the
	// classified failure is returned. When the run is bound to the
	// currently selected saved record and the source still matches it,
	// the record's stored thumbnail is refreshed as a side effect.
	RunScript(ctx context.Context, source string, surface draw.Image) error

	// SelectItem loads the record with the given identifier and makes it
	// the current selection.
	SelectItem(ctx context.Context, id int64) (*script.Record, error)

	// SaveItem inserts (id nil) or updates (id set) a record and returns
	// the resulting identifier. It never touches the stored thumbnail.
	SaveItem(ctx context.Context, id *int64, name, description, source string) (int64, error)

	// List returns the browsing projections of the current project.
	List(ctx context.Context) ([]script.ListEntry, error)

	// Title returns the backing path, or UntitledName for an unsaved
	// project.
	Title() string

	// Dirty reports whether the project holds changes not yet saved to a
	// backing file.
	Dirty() bool

	// Close releases the current project's store handle.
	Close() error
}

// DocumentServiceConfig carries the controller's render parameters.
type DocumentServiceConfig struct {
	ThumbWidth  int
	ThumbHeight int
}

// DefaultDocumentServiceConfig returns the default thumbnail geometry.
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{ThumbWidth: 128, ThumbHeight: 128}
}

// project is one active unit of work. Exactly one is live at any time and
// the controller owns it exclusively; the store handle is never handed out.
type project struct {
	repo  repository.ScriptRepository
	path  string // "" means unsaved in-memory project
	dirty bool
}

// selection tracks which saved record the edit surface currently shows, and
// the source text it had when selected or last saved. RunScript compares
// against this to decide whether a render belongs to the record.
type selection struct {
	id     int64
	source string
}

// DocumentServiceImpl implements DocumentService. All operations run on the
// caller's single logical thread; the struct carries no locking because the
// store handle is never touched from two execution contexts.
type DocumentServiceImpl struct {
	stores      StoreFactory
	interpreter Interpreter
	renderer    Renderer
	config      DocumentServiceConfig
	log         Logger

	current  *project
	selected *selection
}

// NewDocumentService creates a controller bound to a fresh empty project.
func NewDocumentService(stores StoreFactory, interp Interpreter, renderer Renderer, config DocumentServiceConfig, log Logger) (*DocumentServiceImpl, error) {
	if log == nil {
		log = nopLogger{}
	}
	s := &DocumentServiceImpl{
		stores:      stores,
		interpreter: interp,
		renderer:    renderer,
		config:      config,
		log:         log,
	}
	if err := s.NewProject(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewProject binds a fresh empty in-memory project.
func (s *DocumentServiceImpl) NewProject() error {
	repo, err := s.stores.OpenMemory()
	if err != nil {
		// No valid state to fall back to; the caller decides whether to
		// exit. Never panic here.
		return fmt.Errorf("new project: %w", err)
	}
	s.replaceProject(&project{repo: repo})
	s.selected = nil
	s.log.Info("new project")
	return nil
}

// Open replaces the current project with the store at path.
func (s *DocumentServiceImpl) Open(path string) error {
	repo, err := s.stores.OpenFile(path)
	if err != nil {
		// Current project stays bound; the caller's title/state must not
		// change on a failed open.
		return fmt.Errorf("open project: %w", err)
	}
	s.replaceProject(&project{repo: repo, path: path})
	s.selected = nil
	s.log.Info("loaded %s", path)
	return nil
}

// SaveAs copies the store to path and rebinds the controller to it.
func (s *DocumentServiceImpl) SaveAs(ctx context.Context, path string) error {
	if err := s.current.repo.Backup(ctx, path); err != nil {
		return fmt.Errorf("save as %s: %w", path, err)
	}

	repo, err := s.stores.OpenFile(path)
	if err != nil {
		return fmt.Errorf("save as %s: %w: %v", path, ErrSaveReopenMismatch, err)
	}

	keep := s.selected
	s.replaceProject(&project{repo: repo, path: path})
	s.selected = keep
	s.log.Info("saved project to %s", path)
	return nil
}

// RunScript evaluates source and renders the result onto surface.
func (s *DocumentServiceImpl) RunScript(ctx context.Context, source string, surface draw.Image) error {
	runID := newRunID()
	s.log.Debug("run %s: evaluating %d bytes of source", runID, len(source))

	seq, err := s.interpreter.Eval(ctx, source)
	if err != nil {
		// The surface is untouched; the previously rendered image stays.
		s.log.Debug("run %s: failed: %v", runID, err)
		return err
	}

	s.renderer.Render(surface, seq)
	s.log.Info("run %s: rendered %d commands", runID, len(seq))

	if sel := s.selected; sel != nil && sel.source == source {
		if err := s.refreshThumbnail(ctx, sel.id, seq); err != nil {
			// The render itself succeeded; a thumbnail refresh failure is
			// reported but does not undo the run.
			return fmt.Errorf("run succeeded, thumbnail update failed: %w", err)
		}
	}
	return nil
}

func (s *DocumentServiceImpl) refreshThumbnail(ctx context.Context, id int64, seq command.Sequence) error {
	png, err := s.renderer.Thumbnail(seq, s.config.ThumbWidth, s.config.ThumbHeight)
	if err != nil {
		return err
	}
	rec, err := s.current.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	rec.SetThumbnail(png)
	if err := s.current.repo.Update(ctx, id, rec); err != nil {
		return err
	}
	s.markDirty()
	s.log.Debug("thumbnail refreshed for record %d", id)
	return nil
}

// SelectItem loads a record and makes it the current selection.
func (s *DocumentServiceImpl) SelectItem(ctx context.Context, id int64) (*script.Record, error) {
	rec, err := s.current.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("select item: %w", err)
	}
	s.selected = &selection{id: rec.ID(), source: rec.Source()}
	return rec, nil
}

// SaveItem inserts or updates a record. The stored thumbnail is left alone:
// saving edited text keeps the last known good render until the next
// successful run replaces it.
func (s *DocumentServiceImpl) SaveItem(ctx context.Context, id *int64, name, description, source string) (int64, error) {
	if id == nil {
		rec := script.NewRecord(name, description, source)
		newID, err := s.current.repo.Insert(ctx, rec)
		if err != nil {
			return 0, fmt.Errorf("save item: %w", err)
		}
		s.selected = &selection{id: newID, source: source}
		s.markDirty()
		return newID, nil
	}

	rec, err := s.current.repo.Get(ctx, *id)
	if err != nil {
		return 0, fmt.Errorf("save item: %w", err)
	}
	rec.Rename(name, description)
	rec.UpdateSource(source)
	if err := s.current.repo.Update(ctx, *id, rec); err != nil {
		return 0, fmt.Errorf("save item: %w", err)
	}
	s.selected = &selection{id: *id, source: source}
	s.markDirty()
	return *id, nil
}

// List returns the browsing projections of the current project.
func (s *DocumentServiceImpl) List(ctx context.Context) ([]script.ListEntry, error) {
	entries, err := s.current.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return entries, nil
}

// Title returns the backing path or UntitledName.
func (s *DocumentServiceImpl) Title() string {
	if s.current == nil || s.current.path == "" {
		return UntitledName
	}
	return s.current.path
}

// Dirty reports unsaved changes in a project without a backing file.
func (s *DocumentServiceImpl) Dirty() bool {
	return s.current != nil && s.current.dirty
}

// Close releases the current store handle.
func (s *DocumentServiceImpl) Close() error {
	if s.current == nil {
		return nil
	}
	err := s.current.repo.Close()
	s.current = nil
	s.selected = nil
	return err
}

// replaceProject closes the old store handle and installs the new project.
// The old handle is discarded and never reused.
func (s *DocumentServiceImpl) replaceProject(next *project) {
	if s.current != nil {
		if err := s.current.repo.Close(); err != nil {
			s.log.Warn("closing previous project store: %v", err)
		}
	}
	s.current = next
}

// markDirty flags unsaved changes. A project bound to a file persists every
// mutation immediately, so only the in-memory case can be dirty.
func (s *DocumentServiceImpl) markDirty() {
	if s.current != nil && s.current.path == "" {
		s.current.dirty = true
	}
}

// newRunID returns a ULID identifying one script execution in the logs.
func newRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
