package media

import (
	"context"
	"fmt"

	"github.com/mcncl/llsdtool/internal/llsd"
)

// Applier sends changed settings to wherever they are stored.
type Applier interface {
	ApplyMedia(ctx context.Context, settings *llsd.Map) error
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(ctx context.Context, settings *llsd.Map) error

// ApplyMedia calls f.
func (f ApplierFunc) ApplyMedia(ctx context.Context, settings *llsd.Map) error {
	return f(ctx, settings)
}

// Session tracks edits to one face's media settings against the values it was
// opened with. A Session is not safe for concurrent use.
type Session struct {
	initial  *llsd.Map
	current  *llsd.Map
	editable bool
}

// NewSession returns a session holding the default settings.
func NewSession() *Session {
	s := &Session{}
	_ = s.Init(nil, false)
	return s
}

// Init replaces the session's state with settings, normalized against the
// defaults. Both the initial and the current values are set, so Changed
// reports false afterwards.
func (s *Session) Init(settings llsd.Value, editable bool) error {
	_, normalized, err := Normalize(settings)
	if err != nil {
		return err
	}
	s.initial = normalized
	s.current = normalized.Clone()
	s.editable = editable
	return nil
}

// Editable reports whether Set and Apply are allowed.
func (s *Session) Editable() bool { return s.editable }

// Get returns the current value of key, or Undefined.
func (s *Session) Get(key string) llsd.Value { return s.current.At(key) }

// Values returns a copy of the current settings.
func (s *Session) Values() *llsd.Map { return s.current.Clone() }

// Entry returns the current settings in typed form.
func (s *Session) Entry() Entry {
	var e Entry
	// current is always normalized
	_ = llsd.Decode(s.current, &e)
	return e
}

// Set changes one setting. The new value must have the type the default has
// and the resulting entry must still validate; otherwise nothing changes.
func (s *Session) Set(key string, v llsd.Value) error {
	if !s.editable {
		return ErrNotEditable
	}
	if !DefaultTemplate().Has(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	candidate := s.current.Clone()
	candidate.Set(key, llsd.Clone(v))
	_, normalized, err := Normalize(candidate)
	if err != nil {
		return err
	}
	s.current = normalized
	return nil
}

// ChangedKeys lists the keys whose current value differs from the initial one,
// in settings order.
func (s *Session) ChangedKeys() []string {
	var changed []string
	s.current.Range(func(key string, v llsd.Value) bool {
		if !llsd.Equal(v, s.initial.At(key)) {
			changed = append(changed, key)
		}
		return true
	})
	return changed
}

// Changed reports whether any setting differs from its initial value.
func (s *Session) Changed() bool {
	changed := false
	s.current.Range(func(key string, v llsd.Value) bool {
		changed = !llsd.Equal(v, s.initial.At(key))
		return !changed
	})
	return changed
}

// Apply hands the current settings to a when something changed. After a
// successful apply the current values become the new initial values. The
// returned bool reports whether a was called and succeeded.
func (s *Session) Apply(ctx context.Context, a Applier) (bool, error) {
	if !s.editable {
		return false, ErrNotEditable
	}
	if !s.Changed() {
		return false, nil
	}
	if err := a.ApplyMedia(ctx, s.current.Clone()); err != nil {
		return false, err
	}
	s.initial = s.current.Clone()
	return true, nil
}

// Cancel discards edits made since Init or the last Apply.
func (s *Session) Cancel() {
	s.current = s.initial.Clone()
}
