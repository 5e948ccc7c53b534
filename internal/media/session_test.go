package media

import (
	"context"
	"errors"
	"testing"

	"github.com/mcncl/llsdtool/internal/llsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingApplier struct {
	calls []*llsd.Map
	err   error
}

func (r *recordingApplier) ApplyMedia(_ context.Context, settings *llsd.Map) error {
	r.calls = append(r.calls, settings)
	return r.err
}

func openSession(t *testing.T, editable bool) *Session {
	t.Helper()
	s := NewSession()
	require.NoError(t, s.Init(llsd.MapOf(
		KeyHomeURL, llsd.String("http://home/"),
		KeyAutoLoop, llsd.Boolean(true),
	), editable))
	return s
}

func TestSession_InitIsUnchanged(t *testing.T) {
	s := openSession(t, true)
	assert.False(t, s.Changed())
	assert.Empty(t, s.ChangedKeys())
	assert.Equal(t, llsd.String("http://home/"), s.Get(KeyHomeURL))
	assert.Equal(t, "http://home/", s.Entry().HomeURL)
}

func TestSession_SetAndChanged(t *testing.T) {
	s := openSession(t, true)

	require.NoError(t, s.Set(KeyAutoLoop, llsd.Boolean(false)))
	require.NoError(t, s.Set(KeyWidthPixels, llsd.Integer(512)))
	assert.True(t, s.Changed())
	assert.Equal(t, []string{KeyAutoLoop, KeyWidthPixels}, s.ChangedKeys())

	// setting a value back to its initial value clears the change
	require.NoError(t, s.Set(KeyAutoLoop, llsd.Boolean(true)))
	assert.Equal(t, []string{KeyWidthPixels}, s.ChangedKeys())
}

func TestSession_SetRejectsBadValues(t *testing.T) {
	s := openSession(t, true)

	err := s.Set("volume", llsd.Real(1))
	assert.ErrorIs(t, err, ErrUnknownKey)

	err = s.Set(KeyAutoPlay, llsd.String("yes"))
	assert.ErrorIs(t, err, ErrInvalidEntry)

	err = s.Set(KeyHeightPixels, llsd.Integer(-1))
	assert.ErrorIs(t, err, ErrInvalidEntry)

	assert.False(t, s.Changed(), "failed sets leave the session untouched")
}

func TestSession_Whitelist(t *testing.T) {
	s := openSession(t, true)
	require.NoError(t, s.Set(KeyWhitelist, llsd.Array{llsd.String("a.com"), llsd.String("b.com")}))
	assert.Equal(t, []string{"a.com", "b.com"}, s.Entry().Whitelist)
	assert.Equal(t, []string{KeyWhitelist}, s.ChangedKeys())
}

func TestSession_NotEditable(t *testing.T) {
	s := openSession(t, false)
	assert.False(t, s.Editable())
	assert.ErrorIs(t, s.Set(KeyAutoLoop, llsd.Boolean(false)), ErrNotEditable)

	applied, err := s.Apply(context.Background(), &recordingApplier{})
	assert.False(t, applied)
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestSession_Apply(t *testing.T) {
	s := openSession(t, true)
	a := &recordingApplier{}

	applied, err := s.Apply(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, applied, "nothing to apply")
	assert.Empty(t, a.calls)

	require.NoError(t, s.Set(KeyCurrentURL, llsd.String("http://now/")))
	applied, err = s.Apply(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, a.calls, 1)
	assert.Equal(t, llsd.String("http://now/"), a.calls[0].At(KeyCurrentURL))
	assert.False(t, s.Changed(), "applied values become the baseline")

	// the applier gets a copy
	a.calls[0].Set(KeyCurrentURL, llsd.String("mutated"))
	assert.Equal(t, llsd.String("http://now/"), s.Get(KeyCurrentURL))
}

func TestSession_ApplyFailureKeepsChanges(t *testing.T) {
	s := openSession(t, true)
	require.NoError(t, s.Set(KeyAutoZoom, llsd.Boolean(true)))

	boom := errors.New("boom")
	applied, err := s.Apply(context.Background(), ApplierFunc(func(context.Context, *llsd.Map) error { return boom }))
	assert.False(t, applied)
	assert.ErrorIs(t, err, boom)
	assert.True(t, s.Changed())
}

func TestSession_Cancel(t *testing.T) {
	s := openSession(t, true)
	require.NoError(t, s.Set(KeyControls, llsd.Integer(ControlsMini)))
	s.Cancel()
	assert.False(t, s.Changed())
	assert.Equal(t, ControlsStandard, s.Entry().Controls)
}
