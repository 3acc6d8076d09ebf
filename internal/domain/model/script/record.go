// Package script contains the ScriptRecord entity: a named script plus the
// thumbnail of its last successful render.
package script

import (
	"golang.org/x/text/unicode/norm"
)

// Record represents a persisted script entry in a project.
// The identifier is assigned by the store on insert and is immutable after
// that. The thumbnail is nil until the first successful render; when the
// source is edited without a re-render the thumbnail keeps the last
// successfully rendered image rather than being cleared.
type Record struct {
	id          int64
	name        string
	description string
	source      string
	thumbnail   []byte // PNG bytes, nil until first successful render
}

// NewRecord creates an unsaved record. The name is NFC-normalized so that
// lookups are stable regardless of how the name was typed.
func NewRecord(name, description, source string) *Record {
	return &Record{
		id:          0, // assigned by the repository on insert
		name:        norm.NFC.String(name),
		description: description,
		source:      source,
	}
}

// ReconstructRecord rebuilds a record from stored data.
func ReconstructRecord(id int64, name, description, source string, thumbnail []byte) *Record {
	return &Record{
		id:          id,
		name:        name,
		description: description,
		source:      source,
		thumbnail:   thumbnail,
	}
}

// Getters
func (r *Record) ID() int64           { return r.id }
func (r *Record) Name() string        { return r.name }
func (r *Record) Description() string { return r.description }
func (r *Record) Source() string      { return r.source }
func (r *Record) Thumbnail() []byte   { return r.thumbnail }

// SetID sets the store-assigned identifier. The repository calls this once
// after a successful insert.
func (r *Record) SetID(id int64) { r.id = id }

// Rename updates the display name and description.
func (r *Record) Rename(name, description string) {
	r.name = norm.NFC.String(name)
	r.description = description
}

// UpdateSource replaces the source text. The thumbnail is intentionally
// left alone: it stays the last known good render until the next successful
// execution replaces it.
func (r *Record) UpdateSource(source string) {
	r.source = source
}

// SetThumbnail records the image of a successful render of the current
// source text.
func (r *Record) SetThumbnail(png []byte) {
	r.thumbnail = png
}

// ListEntry is the projection used to populate a browsing list. It carries
// no source or thumbnail payload.
type ListEntry struct {
	ID          int64
	Name        string
	Description string
}
