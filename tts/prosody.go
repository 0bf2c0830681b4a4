package tts

import "fmt"

// ParameterKind identifies a prosody parameter.
type ParameterKind int

const (
	// ParameterRate is the speaking rate offset in percent.
	ParameterRate ParameterKind = iota
	// ParameterPitch is the pitch offset in Hz.
	ParameterPitch
	// ParameterVolume is the volume offset in percent.
	ParameterVolume
)

// Valid prosody offset ranges. Values outside these ranges are a caller
// bug; use Clamped to normalize user-supplied defaults.
const (
	RateMin   = -50
	RateMax   = 100
	PitchMin  = -50
	PitchMax  = 50
	VolumeMin = -50
	VolumeMax = 100
)

// String returns the parameter name.
func (k ParameterKind) String() string {
	switch k {
	case ParameterRate:
		return "rate"
	case ParameterPitch:
		return "pitch"
	case ParameterVolume:
		return "volume"
	default:
		return "unknown"
	}
}

// Unit returns the wire unit suffix for the parameter.
func (k ParameterKind) Unit() string {
	if k == ParameterPitch {
		return "Hz"
	}
	return "%"
}

// EncodeParameter renders a prosody offset in the backend's wire format:
// an explicit sign, the magnitude, and the unit. Zero encodes as "+0%" or
// "+0Hz".
func EncodeParameter(value int, kind ParameterKind) string {
	return fmt.Sprintf("%+d%s", value, kind.Unit())
}

// Prosody holds the three independent prosody offsets. The zero value is
// the backend's "normal" voice.
type Prosody struct {
	Rate   int
	Pitch  int
	Volume int
}

// EncodedProsody is a Prosody rendered to wire strings.
type EncodedProsody struct {
	Rate   string
	Pitch  string
	Volume string
}

// Encoded renders the offsets to the wire format.
func (p Prosody) Encoded() EncodedProsody {
	return EncodedProsody{
		Rate:   EncodeParameter(p.Rate, ParameterRate),
		Pitch:  EncodeParameter(p.Pitch, ParameterPitch),
		Volume: EncodeParameter(p.Volume, ParameterVolume),
	}
}

// Clamped returns the offsets clamped into their valid ranges.
func (p Prosody) Clamped() Prosody {
	return Prosody{
		Rate:   clamp(p.Rate, RateMin, RateMax),
		Pitch:  clamp(p.Pitch, PitchMin, PitchMax),
		Volume: clamp(p.Volume, VolumeMin, VolumeMax),
	}
}

// IsDefault reports whether all offsets are zero.
func (p Prosody) IsDefault() bool {
	return p == Prosody{}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
