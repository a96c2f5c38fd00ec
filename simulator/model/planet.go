package model

// Star is the central body every BodySpec orbits. GM is the tuned
// gravitational parameter (G times mass) in scene units, not SI.
type Star struct {
	Name     string
	Diameter float64
	GM       float64
}

func NewStar(name string, diameter, gm float64) *Star {
	return &Star{Name: name, Diameter: diameter, GM: gm}
}
