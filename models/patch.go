package models

import (
	"encoding/json"
)

type PatchState uint8

const (
	PatchUnchanged PatchState = iota
	PatchClear
	PatchSet
)

// Patch is a tri-state update field. A JSON key that is absent leaves the
// field Unchanged, an explicit null Clears it, and any other value Sets it.
type Patch[T any] struct {
	State PatchState
	Value T
}

func SetTo[T any](v T) Patch[T] {
	return Patch[T]{State: PatchSet, Value: v}
}

func Cleared[T any]() Patch[T] {
	return Patch[T]{State: PatchClear}
}

func (p Patch[T]) IsSet() bool { return p.State == PatchSet }
func (p Patch[T]) IsClear() bool { return p.State == PatchClear }
func (p Patch[T]) Present() bool { return p.State != PatchUnchanged }
func (p Patch[T]) Get() (T, bool) { return p.Value, p.State == PatchSet }

// UnmarshalJSON is only invoked when the key is present, so absence keeps
// the zero value (PatchUnchanged).
func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		var zero T
		p.State = PatchClear
		p.Value = zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.State = PatchSet
	p.Value = v
	return nil
}
