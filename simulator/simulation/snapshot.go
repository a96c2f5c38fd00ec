package simulation

import "orrery/simulator/model"

// BodySnapshot is the read model of one body at a frame.
type BodySnapshot struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Tag      model.Tag  `json:"tag"`
	Scale    float64    `json:"scale"`
	Color    string     `json:"color,omitempty"`
	Radius   float64    `json:"radius"`
	Phase    float64    `json:"phase"`
	Omega    float64    `json:"omega"`
	Period   float64    `json:"period"`
	Position model.Vec3 `json:"position"`
	TrailLen int        `json:"trail_len"`
	TrailCap int        `json:"trail_cap"`
}

type StarSnapshot struct {
	Name     string  `json:"name"`
	Rotation float64 `json:"rotation"`
}

type Snapshot struct {
	Frame   uint64         `json:"frame"`
	Elapsed float64        `json:"elapsed"`
	Star    StarSnapshot   `json:"star"`
	Bodies  []BodySnapshot `json:"bodies"`
}

// Snapshot copies the current scene state.
func (s *System) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Frame:   s.frame,
		Elapsed: s.elapsed,
		Bodies:  make([]BodySnapshot, 0, len(s.order)),
	}
	if s.Star != nil {
		snap.Star.Name = s.Star.Name
		for _, a := range s.animations {
			if a.Target == s.Star.Name {
				snap.Star.Rotation = a.Player.Value()
				break
			}
		}
	}
	for _, h := range s.order {
		b := s.bodies[h]
		snap.Bodies = append(snap.Bodies, BodySnapshot{
			ID:       b.Spec.ID,
			Name:     b.Spec.Name,
			Tag:      b.Spec.Tag,
			Scale:    b.Spec.Scale,
			Color:    b.Spec.Color,
			Radius:   b.State.Radius,
			Phase:    b.State.Phase,
			Omega:    b.State.Omega,
			Period:   b.State.Period(),
			Position: b.State.Position,
			TrailLen: b.trail.Len(),
			TrailCap: b.trail.Cap(),
		})
	}
	return snap
}
