package service

import (
	"context"
	"fmt"
	"image/draw"
)

// SignalName identifies one externally raised event. The set is closed;
// names outside it are logged and ignored rather than failing.
type SignalName string

const (
	SignalNew        SignalName = "new"
	SignalOpen       SignalName = "open"
	SignalSaveAs     SignalName = "save-as"
	SignalRunScript  SignalName = "run-script"
	SignalSelectItem SignalName = "select-item"
	SignalSaveItem   SignalName = "save-item"
	SignalQuit       SignalName = "quit"
)

// Signal is an externally raised named event plus its payload. Payloads are
// the typed structs below; the dispatcher resolves the name exactly once
// at this boundary instead of re-matching strings deeper in the core.
type Signal struct {
	Name    SignalName
	Payload any
}

// OpenPayload accompanies SignalOpen and SignalSaveAs.
type OpenPayload struct {
	Path string
}

// RunScriptPayload accompanies SignalRunScript.
type RunScriptPayload struct {
	Source  string
	Surface draw.Image
}

// SelectItemPayload accompanies SignalSelectItem.
type SelectItemPayload struct {
	ID int64
}

// SaveItemPayload accompanies SignalSaveItem. ID is nil for an insert.
type SaveItemPayload struct {
	ID          *int64
	Name        string
	Description string
	Source      string
}

// Dispatcher maps signals onto document controller operations.
type Dispatcher struct {
	docs DocumentService
	log  Logger
}

// NewDispatcher creates a signal dispatcher over a document controller.
func NewDispatcher(docs DocumentService, log Logger) *Dispatcher {
	if log == nil {
		log = nopLogger{}
	}
	return &Dispatcher{docs: docs, log: log}
}

// Dispatch runs the controller operation for sig inside the caller's
// execution context. Unrecognized signal names are logged and ignored; a
// recognized signal with a payload of the wrong shape is an error.
func (d *Dispatcher) Dispatch(ctx context.Context, sig Signal) error {
	switch sig.Name {
	case SignalNew:
		return d.docs.NewProject()
	case SignalOpen:
		p, err := payloadAs[OpenPayload](sig)
		if err != nil {
			return err
		}
		return d.docs.Open(p.Path)
	case SignalSaveAs:
		p, err := payloadAs[OpenPayload](sig)
		if err != nil {
			return err
		}
		return d.docs.SaveAs(ctx, p.Path)
	case SignalRunScript:
		p, err := payloadAs[RunScriptPayload](sig)
		if err != nil {
			return err
		}
		return d.docs.RunScript(ctx, p.Source, p.Surface)
	case SignalSelectItem:
		p, err := payloadAs[SelectItemPayload](sig)
		if err != nil {
			return err
		}
		_, err = d.docs.SelectItem(ctx, p.ID)
		return err
	case SignalSaveItem:
		p, err := payloadAs[SaveItemPayload](sig)
		if err != nil {
			return err
		}
		_, err = d.docs.SaveItem(ctx, p.ID, p.Name, p.Description, p.Source)
		return err
	case SignalQuit:
		return d.docs.Close()
	default:
		d.log.Warn("ignoring unrecognized signal %q", sig.Name)
		return nil
	}
}

func payloadAs[T any](sig Signal) (T, error) {
	p, ok := sig.Payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("signal %s: payload is %T, want %T", sig.Name, sig.Payload, zero)
	}
	return p, nil
}
