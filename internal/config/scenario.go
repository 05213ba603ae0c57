package config

import (
	"gopkg.in/yaml.v3"

	"github.com/udisondev/hostile/internal/model"
)

// Navigation describes the level's navigation graph.
type Navigation struct {
	ConnectDistance float64      `yaml:"connect_distance"`
	CellSize        float64      `yaml:"cell_size"`  // obstacle broad-phase cell edge
	PathCache       int          `yaml:"path_cache"` // cached routes
	Nodes           []NodeConfig `yaml:"nodes"`
}

// NodeConfig is one navigation node.
type NodeConfig struct {
	Position model.Vec3 `yaml:"position"`
	Type     string     `yaml:"type"`
}

// Obstacle is an axis-aligned box.
type Obstacle struct {
	Center model.Vec3 `yaml:"center"`
	Size   model.Vec3 `yaml:"size"`
}

// PlayerConfig describes a scripted player.
type PlayerConfig struct {
	ID       uint32       `yaml:"id"`
	Position model.Vec3   `yaml:"position"`
	Health   float64      `yaml:"health"`
	Speed    float64      `yaml:"speed"`
	Path     []model.Vec3 `yaml:"path"`
	Weapon   PlayerWeapon `yaml:"weapon"`
}

// PlayerWeapon lets the scripted player shoot back. Zero fire_rate disarms.
type PlayerWeapon struct {
	Damage   float64 `yaml:"damage"`
	FireRate float64 `yaml:"fire_rate"`
	Range    float64 `yaml:"range"`
}

// AgentConfig describes one hostile agent.
type AgentConfig struct {
	ID     uint32        `yaml:"id"`
	Name   string        `yaml:"name"`
	Spawn  model.Vec3    `yaml:"spawn"`
	YawDeg float64       `yaml:"yaw_deg"`
	Target uint32        `yaml:"target"` // player ID; 0 picks the first player
	Stats  ProfileConfig `yaml:"profile"`
	Weapon WeaponConfig  `yaml:"weapon"`
	Patrol PatrolConfig  `yaml:"patrol"`
}

// ProfileConfig mirrors model.AgentProfile.
type ProfileConfig struct {
	MaxHealth      float64 `yaml:"max_health"`
	DetectionRange float64 `yaml:"detection_range"`
	AttackRange    float64 `yaml:"attack_range"`
	FieldOfView    float64 `yaml:"field_of_view"`
	WalkSpeed      float64 `yaml:"walk_speed"`
	RunSpeed       float64 `yaml:"run_speed"`
	RotationSpeed  float64 `yaml:"rotation_speed"`
	WaitTime       float64 `yaml:"wait_time"`
	SearchTime     float64 `yaml:"search_time"`
	SearchRadius   float64 `yaml:"search_radius"`
}

// WeaponConfig mirrors model.CombatProfile.
type WeaponConfig struct {
	Damage           float64 `yaml:"damage"`
	Range            float64 `yaml:"range"`
	Accuracy         float64 `yaml:"accuracy"`
	FireRate         float64 `yaml:"fire_rate"`
	BurstCount       int     `yaml:"burst_count"`
	BurstDelay       float64 `yaml:"burst_delay"`
	ReloadTime       float64 `yaml:"reload_time"`
	MagazineSize     int     `yaml:"magazine_size"`
	Tactic           string  `yaml:"tactic"`
	FlankingRange    float64 `yaml:"flanking_range"`
	SuppressionRange float64 `yaml:"suppression_range"`
}

// PatrolConfig describes a patrol route. Circle, when set, generates points
// around the spawn instead of Points.
type PatrolConfig struct {
	Mode      string        `yaml:"mode"`
	DwellTime float64       `yaml:"dwell_time"`
	Points    []model.Vec3  `yaml:"points"`
	Circle    *CircleConfig `yaml:"circle"`
}

// CircleConfig places Count points on a circle of Radius.
type CircleConfig struct {
	Radius float64 `yaml:"radius"`
	Count  int     `yaml:"count"`
}

// UnmarshalYAML fills omitted agent fields with defaults.
func (a *AgentConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain AgentConfig
	raw := plain(DefaultAgent())
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*a = AgentConfig(raw)
	return nil
}

// UnmarshalYAML fills omitted player fields with defaults.
func (p *PlayerConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain PlayerConfig
	raw := plain(PlayerConfig{Health: 100, Speed: 1.5})
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*p = PlayerConfig(raw)
	return nil
}

// Profile converts to the model type.
func (p ProfileConfig) Profile() model.AgentProfile {
	return model.AgentProfile{
		MaxHealth:      p.MaxHealth,
		DetectionRange: p.DetectionRange,
		AttackRange:    p.AttackRange,
		FieldOfView:    p.FieldOfView,
		WalkSpeed:      p.WalkSpeed,
		RunSpeed:       p.RunSpeed,
		RotationSpeed:  p.RotationSpeed,
		WaitTime:       p.WaitTime,
		SearchTime:     p.SearchTime,
		SearchRadius:   p.SearchRadius,
	}
}

// CombatProfile converts to the model type. Unknown tactics fall back to basic;
// Validate reports them.
func (w WeaponConfig) CombatProfile() model.CombatProfile {
	tactic, _ := model.ParseTactic(w.Tactic)
	return model.CombatProfile{
		Damage:           w.Damage,
		Range:            w.Range,
		Accuracy:         w.Accuracy,
		FireRate:         w.FireRate,
		BurstCount:       w.BurstCount,
		BurstDelay:       w.BurstDelay,
		ReloadTime:       w.ReloadTime,
		MagazineSize:     w.MagazineSize,
		Tactic:           tactic,
		FlankingRange:    w.FlankingRange,
		SuppressionRange: w.SuppressionRange,
	}
}

func profileConfig(p model.AgentProfile) ProfileConfig {
	return ProfileConfig{
		MaxHealth:      p.MaxHealth,
		DetectionRange: p.DetectionRange,
		AttackRange:    p.AttackRange,
		FieldOfView:    p.FieldOfView,
		WalkSpeed:      p.WalkSpeed,
		RunSpeed:       p.RunSpeed,
		RotationSpeed:  p.RotationSpeed,
		WaitTime:       p.WaitTime,
		SearchTime:     p.SearchTime,
		SearchRadius:   p.SearchRadius,
	}
}

func weaponConfig(w model.CombatProfile) WeaponConfig {
	return WeaponConfig{
		Damage:           w.Damage,
		Range:            w.Range,
		Accuracy:         w.Accuracy,
		FireRate:         w.FireRate,
		BurstCount:       w.BurstCount,
		BurstDelay:       w.BurstDelay,
		ReloadTime:       w.ReloadTime,
		MagazineSize:     w.MagazineSize,
		Tactic:           w.Tactic.String(),
		FlankingRange:    w.FlankingRange,
		SuppressionRange: w.SuppressionRange,
	}
}

// DefaultAgent returns an agent entry with default profile and weapon.
func DefaultAgent() AgentConfig {
	return AgentConfig{
		Stats:  profileConfig(model.DefaultAgentProfile()),
		Weapon: weaponConfig(model.DefaultCombatProfile()),
		Patrol: PatrolConfig{Mode: "sequential"},
	}
}

// DefaultNavigation returns a 5x5 grid of nodes 8m apart with two cover spots.
func DefaultNavigation() Navigation {
	nav := Navigation{ConnectDistance: 8.5, CellSize: 8, PathCache: 256}
	for _, x := range []float64{-16, -8, 0, 8, 16} {
		for _, z := range []float64{-16, -8, 0, 8, 16} {
			typ := "normal"
			switch {
			case x == -8 && z == 8, x == 8 && z == -8:
				typ = "cover"
			case x == 0 && z == 0:
				typ = "chokepoint"
			}
			nav.Nodes = append(nav.Nodes, NodeConfig{Position: model.V3(x, 0, z), Type: typ})
		}
	}
	return nav
}

// DefaultObstacles returns crates placed between graph edges.
func DefaultObstacles() []Obstacle {
	return []Obstacle{
		{Center: model.V3(-4, 1, 4), Size: model.V3(3, 2, 3)},
		{Center: model.V3(4, 1, -4), Size: model.V3(3, 2, 3)},
		{Center: model.V3(12, 1, 12), Size: model.V3(3, 2, 3)},
	}
}

// DefaultPlayer returns a player walking the arena perimeter.
func DefaultPlayer() PlayerConfig {
	return PlayerConfig{
		ID:       1,
		Position: model.V3(-16, 0, -16),
		Health:   500,
		Speed:    1.5,
		Path: []model.Vec3{
			model.V3(-16, 0, -16),
			model.V3(16, 0, -16),
			model.V3(16, 0, 16),
			model.V3(-16, 0, 16),
		},
		Weapon: PlayerWeapon{Damage: 20, FireRate: 1, Range: 20},
	}
}

// DefaultAgents returns three agents with different tactics and patrol modes.
func DefaultAgents() []AgentConfig {
	grunt := DefaultAgent()
	grunt.ID, grunt.Name = 1, "grunt"
	grunt.Spawn = model.V3(0, 0, 8)
	grunt.Patrol = PatrolConfig{
		Mode:   "sequential",
		Points: []model.Vec3{model.V3(0, 0, 8), model.V3(8, 0, 8), model.V3(8, 0, 0), model.V3(0, 0, 0)},
	}

	gunner := DefaultAgent()
	gunner.ID, gunner.Name = 2, "gunner"
	gunner.Spawn = model.V3(-8, 0, -8)
	gunner.Weapon.Tactic = model.TacticBurst.String()
	gunner.Weapon.BurstCount = 4
	gunner.Patrol = PatrolConfig{
		Mode:      "pingpong",
		DwellTime: 1,
		Points:    []model.Vec3{model.V3(-8, 0, -8), model.V3(-8, 0, 0), model.V3(-8, 0, 8)},
	}

	sentry := DefaultAgent()
	sentry.ID, sentry.Name = 3, "sentry"
	sentry.Spawn = model.V3(8, 0, 8)
	sentry.YawDeg = 180
	sentry.Weapon.Tactic = model.TacticSuppressive.String()
	sentry.Patrol = PatrolConfig{
		Mode:   "random",
		Circle: &CircleConfig{Radius: 8, Count: 6},
	}

	return []AgentConfig{grunt, gunner, sentry}
}
