// Package media models the per-face media settings of an in-world object:
// its URLs, playback flags, size, whitelist and permissions.
package media

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mcncl/llsdtool/internal/llsd"
)

// Settings keys.
const (
	KeyAltImageEnable     = "alt_image_enable"
	KeyControls           = "controls"
	KeyCurrentURL         = "current_url"
	KeyHomeURL            = "home_url"
	KeyAutoLoop           = "auto_loop"
	KeyAutoPlay           = "auto_play"
	KeyAutoScale          = "auto_scale"
	KeyAutoZoom           = "auto_zoom"
	KeyFirstClickInteract = "first_click_interact"
	KeyWidthPixels        = "width_pixels"
	KeyHeightPixels       = "height_pixels"
	KeyWhitelistEnable    = "whitelist_enable"
	KeyWhitelist          = "whitelist"
	KeyPermsInteract      = "perms_interact"
	KeyPermsControl       = "perms_control"
)

// Permission bits for PermsInteract and PermsControl.
const (
	PermNone   = 0
	PermOwner  = 1 << 0
	PermGroup  = 1 << 1
	PermAnyone = 1 << 2
	PermAll    = PermOwner | PermGroup | PermAnyone
)

// Control bar styles.
const (
	ControlsStandard = 0
	ControlsMini     = 1
)

// Limits enforced by Validate.
const (
	MaxURLLength      = 1024
	MaxPixels         = 2048
	MaxWhitelistCount = 64
)

var (
	// ErrInvalidEntry is wrapped by every validation failure.
	ErrInvalidEntry = errors.New("invalid media entry")
	// ErrNotEditable is returned when editing a read-only session.
	ErrNotEditable = errors.New("media settings are not editable")
	// ErrUnknownKey is returned when setting a key the entry does not have.
	ErrUnknownKey = errors.New("unknown media setting")
)

// Entry is the typed form of a media settings map.
type Entry struct {
	AltImageEnable     bool
	Controls           int
	CurrentURL         string `llsd:"current_url"`
	HomeURL            string `llsd:"home_url"`
	AutoLoop           bool
	AutoPlay           bool
	AutoScale          bool
	AutoZoom           bool
	FirstClickInteract bool
	WidthPixels        int
	HeightPixels       int
	WhitelistEnable    bool
	Whitelist          []string
	PermsInteract      int
	PermsControl       int
}

// DefaultEntry returns the settings a face gets when media is first added.
func DefaultEntry() Entry {
	return Entry{
		Controls:      ControlsStandard,
		Whitelist:     []string{},
		PermsInteract: PermAll,
		PermsControl:  PermAll,
	}
}

// DefaultTemplate returns DefaultEntry as a settings map.
func DefaultTemplate() *llsd.Map {
	v, err := llsd.FromStruct(DefaultEntry())
	if err != nil {
		panic(fmt.Sprintf("media: default entry: %v", err))
	}
	return v.(*llsd.Map)
}

// Value converts e to a settings map.
func (e Entry) Value() *llsd.Map {
	v, err := llsd.FromStruct(e)
	if err != nil {
		panic(fmt.Sprintf("media: entry: %v", err))
	}
	return v.(*llsd.Map)
}

// Validate checks e against the limits the simulator enforces.
func (e Entry) Validate() error {
	var problems []string
	if e.Controls != ControlsStandard && e.Controls != ControlsMini {
		problems = append(problems, fmt.Sprintf("controls %d is not standard or mini", e.Controls))
	}
	for name, url := range map[string]string{KeyCurrentURL: e.CurrentURL, KeyHomeURL: e.HomeURL} {
		if len(url) > MaxURLLength {
			problems = append(problems, fmt.Sprintf("%s longer than %d bytes", name, MaxURLLength))
		}
	}
	if e.WidthPixels < 0 || e.WidthPixels > MaxPixels {
		problems = append(problems, fmt.Sprintf("width_pixels %d outside 0..%d", e.WidthPixels, MaxPixels))
	}
	if e.HeightPixels < 0 || e.HeightPixels > MaxPixels {
		problems = append(problems, fmt.Sprintf("height_pixels %d outside 0..%d", e.HeightPixels, MaxPixels))
	}
	if len(e.Whitelist) > MaxWhitelistCount {
		problems = append(problems, fmt.Sprintf("whitelist has %d entries, limit %d", len(e.Whitelist), MaxWhitelistCount))
	}
	if e.PermsInteract&^PermAll != 0 {
		problems = append(problems, fmt.Sprintf("perms_interact %#x has unknown bits", e.PermsInteract))
	}
	if e.PermsControl&^PermAll != 0 {
		problems = append(problems, fmt.Sprintf("perms_control %#x has unknown bits", e.PermsControl))
	}
	if len(problems) == 0 {
		return nil
	}
	// map iteration above is unordered
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrInvalidEntry, strings.Join(problems, "; "))
}

// Normalize merges raw settings with the defaults and returns both the typed
// entry and the completed map. Unknown keys are dropped. The whitelist is
// checked element by element instead of by position, since its default is
// empty and a positional merge would truncate it.
func Normalize(settings llsd.Value) (Entry, *llsd.Map, error) {
	merged, err := llsd.ConformError(settings, DefaultTemplate())
	if err != nil {
		return Entry{}, nil, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	out := merged.(*llsd.Map)

	whitelist := llsd.EmptyArray()
	if m, ok := settings.(*llsd.Map); ok {
		// the merge above already rejected a whitelist that is not an array
		if arr, ok := m.At(KeyWhitelist).(llsd.Array); ok {
			for i, item := range arr {
				if _, ok := llsd.Conform(item, llsd.String("")); !ok || llsd.TypeOf(item) == llsd.TypeUndefined {
					return Entry{}, nil, fmt.Errorf("%w: whitelist[%d] is %s, not string", ErrInvalidEntry, i, llsd.TypeOf(item))
				}
				whitelist = append(whitelist, llsd.String(llsd.AsString(item)))
			}
		}
	}
	out.Set(KeyWhitelist, whitelist)

	var entry Entry
	if err := llsd.Decode(out, &entry); err != nil {
		return Entry{}, nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if err := entry.Validate(); err != nil {
		return Entry{}, nil, err
	}
	return entry, out, nil
}

// Allows reports whether url passes the whitelist. An empty or disabled
// whitelist allows everything. Patterns match the host, with a leading "*."
// matching any subdomain, optionally followed by a path prefix.
func (e Entry) Allows(url string) bool {
	if !e.WhitelistEnable || len(e.Whitelist) == 0 {
		return true
	}
	host, path := splitURL(url)
	for _, pattern := range e.Whitelist {
		pHost, pPath := splitURL(pattern)
		if !hostMatches(strings.ToLower(pHost), strings.ToLower(host)) {
			continue
		}
		if pPath == "" || strings.HasPrefix(path, pPath) {
			return true
		}
	}
	return false
}

func splitURL(raw string) (host, path string) {
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		host, path = s[:i], s[i:]
	} else {
		host = s
	}
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if path == "/" {
		path = ""
	}
	return host, path
}

func hostMatches(pattern, host string) bool {
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return host == suffix || strings.HasSuffix(host, "."+suffix)
	}
	return pattern == host
}
