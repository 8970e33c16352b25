// Package gesture classifies hand poses from landmark frames and turns
// per-frame results into a stable, hysteresis-protected locked gesture.
package gesture

// Type identifies a recognized gesture.
type Type string

const (
	// None means no gesture was recognized.
	None Type = "NONE"
	// ThumbsUpHalo is a raised thumb with the four fingers curled.
	ThumbsUpHalo Type = "THUMBS_UP_HALO"
	// TwoHandHeart is both hands joining thumbs and index fingers.
	TwoHandHeart Type = "TWO_HAND_HEART"
	// RockSign is index and pinky extended with middle and ring curled.
	RockSign Type = "ROCK_SIGN"
	// PointSparkles is a single extended index finger.
	PointSparkles Type = "POINT_SPARKLES"
	// PeaceSign is index and middle extended in a V.
	PeaceSign Type = "PEACE_SIGN"
)

// Types lists every non-NONE gesture in evaluation order. Earlier entries
// win confidence ties.
var Types = []Type{ThumbsUpHalo, TwoHandHeart, RockSign, PointSparkles, PeaceSign}

// Valid reports whether t is a known gesture type, including None.
func (t Type) Valid() bool {
	if t == None {
		return true
	}
	for _, k := range Types {
		if t == k {
			return true
		}
	}
	return false
}

// Label returns a human-readable name for status displays.
func (t Type) Label() string {
	switch t {
	case ThumbsUpHalo:
		return "Thumbs Up"
	case TwoHandHeart:
		return "Heart Hands"
	case RockSign:
		return "Rock On"
	case PointSparkles:
		return "Point"
	case PeaceSign:
		return "Peace"
	default:
		return "None"
	}
}

// State is the classifier's temporal view of the current gesture.
// Locked implies Type != None.
type State struct {
	Type           Type    `json:"type"`
	Confidence     float64 `json:"confidence"`
	Locked         bool    `json:"locked"`
	StabilityCount int     `json:"stabilityCount"`
}

// Active returns the locked gesture, or None while nothing is locked.
func (s State) Active() Type {
	if s.Locked {
		return s.Type
	}
	return None
}

// Options holds classifier thresholds.
type Options struct {
	// StabilityFrames is the number of consecutive identical frames required
	// before a gesture locks.
	StabilityFrames int `yaml:"stability_frames"`
	// LostGraceFrames is the number of non-matching frames tolerated before
	// a locked gesture is released.
	LostGraceFrames int `yaml:"lost_grace_frames"`
	// FingerExtendedAngle is the bend angle in degrees below which a finger
	// counts as extended.
	FingerExtendedAngle float64 `yaml:"finger_extended_angle"`
	// HeartThreshold is the maximum thumb-tip and index-tip separation
	// between the two hands.
	HeartThreshold float64 `yaml:"heart_threshold"`
	// HeartBand is the maximum vertical offset within each fingertip pair.
	HeartBand float64 `yaml:"heart_band"`
	// PeaceMinSeparation is the minimum index/middle tip separation as a
	// fraction of palm width.
	PeaceMinSeparation float64 `yaml:"peace_min_separation"`
}

// Default classifier settings.
const (
	DefaultStabilityFrames     = 30 // ~1s at 30 FPS
	DefaultLostGraceFrames     = 12
	DefaultFingerExtendedAngle = 40.0
	DefaultHeartThreshold      = 0.07
	DefaultHeartBand           = 0.10
	DefaultPeaceMinSeparation  = 0.05
)

// DefaultOptions returns Options with the standard thresholds.
func DefaultOptions() Options {
	return Options{
		StabilityFrames:     DefaultStabilityFrames,
		LostGraceFrames:     DefaultLostGraceFrames,
		FingerExtendedAngle: DefaultFingerExtendedAngle,
		HeartThreshold:      DefaultHeartThreshold,
		HeartBand:           DefaultHeartBand,
		PeaceMinSeparation:  DefaultPeaceMinSeparation,
	}
}

// withDefaults fills non-positive fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.StabilityFrames <= 0 {
		o.StabilityFrames = d.StabilityFrames
	}
	if o.LostGraceFrames <= 0 {
		o.LostGraceFrames = d.LostGraceFrames
	}
	if o.FingerExtendedAngle <= 0 || o.FingerExtendedAngle >= 180 {
		o.FingerExtendedAngle = d.FingerExtendedAngle
	}
	if o.HeartThreshold <= 0 {
		o.HeartThreshold = d.HeartThreshold
	}
	if o.HeartBand <= 0 {
		o.HeartBand = d.HeartBand
	}
	if o.PeaceMinSeparation <= 0 {
		o.PeaceMinSeparation = d.PeaceMinSeparation
	}
	return o
}
