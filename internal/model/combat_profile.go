package model

// Tactic selects how an agent schedules its shots.
type Tactic int32

const (
	// TacticBasic fires whenever the weapon is ready.
	TacticBasic Tactic = iota
	// TacticBurst fires fixed-size bursts separated by a mandatory pause.
	TacticBurst
	// TacticSuppressive fires like Basic and keeps shooting at the last known
	// position when the target drops out of sight inside suppression range.
	TacticSuppressive
)

// String returns human-readable tactic name
func (t Tactic) String() string {
	switch t {
	case TacticBasic:
		return "basic"
	case TacticBurst:
		return "burst"
	case TacticSuppressive:
		return "suppressive"
	default:
		return "unknown"
	}
}

// ParseTactic converts a config value into a Tactic.
func ParseTactic(s string) (Tactic, bool) {
	switch s {
	case "", "basic":
		return TacticBasic, true
	case "burst":
		return TacticBurst, true
	case "suppressive":
		return TacticSuppressive, true
	default:
		return TacticBasic, false
	}
}

// CombatProfile is immutable weapon configuration of an agent.
type CombatProfile struct {
	Damage           float64
	Range            float64
	Accuracy         float64 // [0, 1]
	FireRate         float64 // shots per second
	BurstCount       int
	BurstDelay       float64 // seconds between shots inside a burst
	ReloadTime       float64 // seconds
	MagazineSize     int
	Tactic           Tactic
	FlankingRange    float64
	SuppressionRange float64
}

// DefaultCombatProfile returns an assault rifle profile.
func DefaultCombatProfile() CombatProfile {
	return CombatProfile{
		Damage:           10,
		Range:            50,
		Accuracy:         0.7,
		FireRate:         2,
		BurstCount:       3,
		BurstDelay:       0.1,
		ReloadTime:       2,
		MagazineSize:     30,
		Tactic:           TacticBasic,
		FlankingRange:    8,
		SuppressionRange: 15,
	}
}

// IsArmed reports whether the profile describes a usable weapon.
// A zero-valued profile disables combat without failing the agent.
func (p CombatProfile) IsArmed() bool {
	return p.MagazineSize > 0 && p.FireRate > 0 && p.Range > 0
}

// FireInterval returns minimum seconds between two shots.
func (p CombatProfile) FireInterval() float64 {
	if p.FireRate <= 0 {
		return 0
	}
	return 1 / p.FireRate
}
