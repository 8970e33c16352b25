package effects

import (
	"time"

	"github.com/ayusman/halo/internal/gesture"
)

// Particle budget and spawn tuning.
const (
	DefaultGlobalBudget = 300

	DefaultMaxConfetti = 160
	DefaultMaxHearts   = 70
	DefaultMaxBolts    = 3
	DefaultMaxSparkles = 160
	DefaultMaxBalloons = 20

	DefaultConfettiBurst   = 120
	DefaultHeartBurst      = 20
	DefaultSparkleBurst    = 30
	DefaultBalloonBurstMin = 6
	DefaultBalloonBurstMax = 10

	// DefaultConfettiRate is confetti pieces per second
	DefaultConfettiRate = 60.0
	// DefaultHeartRate is hearts per second
	DefaultHeartRate = 9.0
	// DefaultSparkleRate is sparkles per second per pointing hand
	DefaultSparkleRate = 45.0
	// DefaultBalloonsPerWave is how many balloons rise each BalloonInterval
	DefaultBalloonsPerWave = 3

	DefaultBoltIntervalMin = 120 * time.Millisecond
	DefaultBoltIntervalMax = 160 * time.Millisecond
	DefaultBalloonInterval = 400 * time.Millisecond
	DefaultFadeWindow      = 400 * time.Millisecond
)

// Options tunes the effects engine. Zero fields take their defaults.
type Options struct {
	GlobalBudget int `yaml:"global_budget"`

	MaxConfetti int `yaml:"max_confetti"`
	MaxHearts   int `yaml:"max_hearts"`
	MaxBolts    int `yaml:"max_bolts"`
	MaxSparkles int `yaml:"max_sparkles"`
	MaxBalloons int `yaml:"max_balloons"`

	ConfettiBurst   int `yaml:"confetti_burst"`
	HeartBurst      int `yaml:"heart_burst"`
	SparkleBurst    int `yaml:"sparkle_burst"`
	BalloonBurstMin int `yaml:"balloon_burst_min"`
	BalloonBurstMax int `yaml:"balloon_burst_max"`

	ConfettiRate    float64 `yaml:"confetti_rate"`
	HeartRate       float64 `yaml:"heart_rate"`
	SparkleRate     float64 `yaml:"sparkle_rate"`
	BalloonsPerWave int     `yaml:"balloons_per_wave"`

	BoltIntervalMin time.Duration `yaml:"bolt_interval_min"`
	BoltIntervalMax time.Duration `yaml:"bolt_interval_max"`
	BalloonInterval time.Duration `yaml:"balloon_interval"`
	FadeWindow      time.Duration `yaml:"fade_window"`

	// Gesture thresholds used to find pointing and peace-sign hands.
	Gesture gesture.Options `yaml:"-"`

	// Seed for the particle RNG; zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// DefaultOptions returns the stock engine tuning.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	setInt := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	setFloat := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	setDur := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}

	setInt(&o.GlobalBudget, DefaultGlobalBudget)
	setInt(&o.MaxConfetti, DefaultMaxConfetti)
	setInt(&o.MaxHearts, DefaultMaxHearts)
	setInt(&o.MaxBolts, DefaultMaxBolts)
	setInt(&o.MaxSparkles, DefaultMaxSparkles)
	setInt(&o.MaxBalloons, DefaultMaxBalloons)
	setInt(&o.ConfettiBurst, DefaultConfettiBurst)
	setInt(&o.HeartBurst, DefaultHeartBurst)
	setInt(&o.SparkleBurst, DefaultSparkleBurst)
	setInt(&o.BalloonBurstMin, DefaultBalloonBurstMin)
	setInt(&o.BalloonBurstMax, DefaultBalloonBurstMax)
	setInt(&o.BalloonsPerWave, DefaultBalloonsPerWave)
	setFloat(&o.ConfettiRate, DefaultConfettiRate)
	setFloat(&o.HeartRate, DefaultHeartRate)
	setFloat(&o.SparkleRate, DefaultSparkleRate)
	setDur(&o.BoltIntervalMin, DefaultBoltIntervalMin)
	setDur(&o.BoltIntervalMax, DefaultBoltIntervalMax)
	setDur(&o.BalloonInterval, DefaultBalloonInterval)
	setDur(&o.FadeWindow, DefaultFadeWindow)

	if o.BalloonBurstMax < o.BalloonBurstMin {
		o.BalloonBurstMax = o.BalloonBurstMin
	}
	if o.BoltIntervalMax < o.BoltIntervalMin {
		o.BoltIntervalMax = o.BoltIntervalMin
	}
	return o
}
