// Package config loads the simulator scene file.
package config

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"orrery/simulator/model"
)

// DefaultGM is the tuned gravitational parameter of the demo scene. It is
// a scene constant, not a physical one.
const DefaultGM = 6672.59 * 0.07

type Body struct {
	Name   string   `mapstructure:"name"`
	Radius float64  `mapstructure:"radius"`
	Phase  *float64 `mapstructure:"phase"` // nil picks a random phase
	Scale  float64  `mapstructure:"scale"`
	Tag    string   `mapstructure:"tag"`
	Color  string   `mapstructure:"color"`
}

type Star struct {
	Name     string  `mapstructure:"name"`
	Diameter float64 `mapstructure:"diameter"`
	GM       float64 `mapstructure:"gm"`
	SpinFPS  float64 `mapstructure:"spin_fps"`
	// SpinFrames is the length of one turn in frames.
	SpinFrames float64 `mapstructure:"spin_frames"`
}

type Trail struct {
	Density float64 `mapstructure:"density"`
	Width   float64 `mapstructure:"width"`
}

type Config struct {
	Star   Star   `mapstructure:"star"`
	Bodies []Body `mapstructure:"bodies"`
	Trail  Trail  `mapstructure:"trail"`

	// Tick is the render loop period.
	Tick time.Duration `mapstructure:"tick"`
	// TimeScale is simulated seconds per wall-clock second.
	TimeScale float64 `mapstructure:"time_scale"`
	// PublishRate caps simulation.step events per second.
	PublishRate float64 `mapstructure:"publish_rate"`
	Seed        uint64  `mapstructure:"seed"`

	RedisAddr  string `mapstructure:"redis_addr"`
	ConsulAddr string `mapstructure:"consul_addr"`
}

// Default is the solar-system demo scene.
func Default() Config {
	return Config{
		Star: Star{Name: "sun", Diameter: 16, GM: DefaultGM, SpinFPS: 30, SpinFrames: 2 * 30},
		Bodies: []Body{
			{Name: "hg", Radius: 14, Scale: 2, Tag: string(model.Rocky), Color: "#73542e"},
			{Name: "aphro", Radius: 35, Scale: 3.5, Tag: string(model.Rocky), Color: "#e8e3b8"},
			{Name: "tellus", Radius: 65, Scale: 3.75, Tag: string(model.Rocky), Color: "#2ba10d"},
			{Name: "ares", Radius: 100, Scale: 3, Tag: string(model.Rocky), Color: "#8c0000"},
			{Name: "zeus", Radius: 140, Scale: 6, Tag: string(model.Gaseous), Color: "#004dff"},
		},
		Trail:       Trail{Density: 1, Width: 0.1},
		Tick:        time.Second / 60,
		TimeScale:   60,
		PublishRate: 10,
		RedisAddr:   "localhost:6379",
		ConsulAddr:  "localhost:8500",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg, keeping fields the document omits.
func Parse(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	// A listed scene replaces the default bodies instead of merging into them.
	if _, ok := raw["bodies"]; ok {
		cfg.Bodies = nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case !(c.Star.GM > 0) || math.IsInf(c.Star.GM, 1):
		return fmt.Errorf("star.gm must be positive and finite, got %v", c.Star.GM)
	case !(c.Star.SpinFPS > 0) || math.IsInf(c.Star.SpinFPS, 1):
		return fmt.Errorf("star.spin_fps must be positive and finite, got %v", c.Star.SpinFPS)
	case !(c.Star.SpinFrames > 0) || math.IsInf(c.Star.SpinFrames, 1):
		return fmt.Errorf("star.spin_frames must be positive and finite, got %v", c.Star.SpinFrames)
	case c.Tick <= 0:
		return fmt.Errorf("tick must be positive, got %v", c.Tick)
	case !(c.TimeScale >= 0) || math.IsInf(c.TimeScale, 1):
		return fmt.Errorf("time_scale must be finite and not negative, got %v", c.TimeScale)
	case !(c.PublishRate >= 0):
		return fmt.Errorf("publish_rate must not be negative, got %v", c.PublishRate)
	}
	return nil
}

// Specs turns the configured bodies into specs. Bodies without a phase get
// a uniform random one in [0, 2π) drawn from Seed; a zero Seed draws from
// the runtime source.
func (c Config) Specs() []model.BodySpec {
	var rng *rand.Rand
	if c.Seed != 0 {
		rng = rand.New(rand.NewPCG(c.Seed, c.Seed))
	}
	specs := make([]model.BodySpec, 0, len(c.Bodies))
	for _, b := range c.Bodies {
		var phase float64
		switch {
		case b.Phase != nil:
			phase = *b.Phase
		case rng != nil:
			phase = rng.Float64() * 2 * math.Pi
		default:
			phase = rand.Float64() * 2 * math.Pi
		}
		specs = append(specs, model.NewBody(b.Name, b.Radius, phase, b.Scale, model.Tag(b.Tag), b.Color))
	}
	return specs
}

func (c Config) NewStar() *model.Star {
	return model.NewStar(c.Star.Name, c.Star.Diameter, c.Star.GM)
}
