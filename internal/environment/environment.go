// Package environment validates the region environment settings a simulator
// sends when an agent enters a region: the day cycle, the sky presets and the
// water settings.
package environment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcncl/llsdtool/internal/llsd"
)

var (
	// ErrMalformedResponse is returned when the response does not have the
	// expected shape.
	ErrMalformedResponse = errors.New("malformed environment response")
	// ErrWrongRegion is returned when the response belongs to another region.
	ErrWrongRegion = errors.New("environment response is for another region")
)

// messageTemplate is the shape of the first element of a response.
var messageTemplate = llsd.MapOf("regionID", llsd.UUID(uuid.Nil))

// keyframeTemplate is the shape of one day cycle entry: a time of day in
// [0, 1] and the name of a sky preset.
var keyframeTemplate = llsd.Array{llsd.Real(0), llsd.String("")}

// realTime returns entry with an integer time widened to a real. JSON and YAML
// read 0 and 1 as integers.
func realTime(entry llsd.Value) llsd.Value {
	pair, ok := entry.(llsd.Array)
	if !ok || len(pair) == 0 {
		return entry
	}
	if n, ok := pair[0].(llsd.Integer); ok {
		return append(llsd.Array{llsd.Real(n)}, pair[1:]...)
	}
	return entry
}

// Keyframe is a point in the day cycle.
type Keyframe struct {
	Time   float64
	Preset string
}

// Settings is a validated environment response.
type Settings struct {
	RegionID uuid.UUID
	// DayCycle is the raw day cycle as sent.
	DayCycle llsd.Value
	// Skies maps preset names to sky parameters, in the order they were sent.
	Skies *llsd.Map
	Water *llsd.Map
}

// ParseResponse validates content, which must be the four element array
// [message, day_cycle, skies, water], and checks that it is meant for region.
func ParseResponse(content llsd.Value, region uuid.UUID) (*Settings, error) {
	parts, ok := content.(llsd.Array)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, found %s", ErrMalformedResponse, llsd.TypeOf(content))
	}
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: expected 4 elements, found %d", ErrMalformedResponse, len(parts))
	}

	message, err := llsd.ConformError(parts[0], messageTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: message: %w", ErrMalformedResponse, err)
	}
	regionID := llsd.AsUUID(message.(*llsd.Map).At("regionID"))
	if regionID != region {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongRegion, regionID, region)
	}

	skies, ok := parts[2].(*llsd.Map)
	if !ok {
		return nil, fmt.Errorf("%w: skies is %s, not map", ErrMalformedResponse, llsd.TypeOf(parts[2]))
	}
	var bad string
	skies.Range(func(name string, v llsd.Value) bool {
		if llsd.TypeOf(v) != llsd.TypeMap {
			bad = name
			return false
		}
		return true
	})
	if bad != "" {
		return nil, fmt.Errorf("%w: sky preset %q is %s, not map", ErrMalformedResponse, bad, llsd.TypeOf(skies.At(bad)))
	}

	water, ok := parts[3].(*llsd.Map)
	if !ok {
		return nil, fmt.Errorf("%w: water is %s, not map", ErrMalformedResponse, llsd.TypeOf(parts[3]))
	}

	return &Settings{
		RegionID: regionID,
		DayCycle: llsd.Clone(parts[1]),
		Skies:    skies.Clone(),
		Water:    water.Clone(),
	}, nil
}

// SkyNames returns the preset names in the order they were sent.
func (s *Settings) SkyNames() []string {
	return s.Skies.Keys()
}

// Sky returns the parameters of the named sky preset.
func (s *Settings) Sky(name string) (*llsd.Map, bool) {
	v, ok := s.Skies.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*llsd.Map), true
}

// Keyframes decodes the day cycle. Each entry must be a [time, preset] pair
// whose preset is one of the sky presets.
func (s *Settings) Keyframes() ([]Keyframe, error) {
	cycle, ok := s.DayCycle.(llsd.Array)
	if !ok {
		return nil, fmt.Errorf("%w: day cycle is %s, not array", ErrMalformedResponse, llsd.TypeOf(s.DayCycle))
	}
	frames := make([]Keyframe, 0, len(cycle))
	for i, entry := range cycle {
		if llsd.Size(entry) != len(keyframeTemplate) {
			return nil, fmt.Errorf("%w: day cycle entry %d is not a [time, preset] pair", ErrMalformedResponse, i)
		}
		merged, err := llsd.ConformError(realTime(entry), keyframeTemplate)
		if err != nil {
			return nil, fmt.Errorf("%w: day cycle entry %d: %w", ErrMalformedResponse, i, err)
		}
		pair := merged.(llsd.Array)
		frame := Keyframe{Time: llsd.AsReal(pair[0]), Preset: llsd.AsString(pair[1])}
		if frame.Time < 0 || frame.Time > 1 {
			return nil, fmt.Errorf("%w: day cycle entry %d has time %g outside [0, 1]", ErrMalformedResponse, i, frame.Time)
		}
		if !s.Skies.Has(frame.Preset) {
			return nil, fmt.Errorf("%w: day cycle entry %d names unknown sky preset %q", ErrMalformedResponse, i, frame.Preset)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
