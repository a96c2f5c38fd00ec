package simulation

import (
	"github.com/hashicorp/go-multierror"

	"orrery/simulator/animation"
	"orrery/simulator/model"
)

// SpinOptions describe the looping spin of the central star.
type SpinOptions struct {
	FPS    float64
	Frames float64
}

// BuildScene starts the star spin and attaches every body. A body that
// fails to attach is skipped; the others are kept and all failures are
// returned together.
func (s *System) BuildScene(bodies []model.BodySpec, spin SpinOptions) error {
	var result *multierror.Error

	if err := s.StartSpin(spin); err != nil {
		result = multierror.Append(result, err)
	}
	for _, b := range bodies {
		if _, err := s.Attach(b, nil); err != nil {
			s.logger.Warn("skipping body", "name", b.Name, "error", err)
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// StartSpin loops a full turn of the star over spin.Frames frames.
func (s *System) StartSpin(spin SpinOptions) error {
	name := "star"
	if s.Star != nil {
		name = s.Star.Name
	}
	track, err := animation.NewSpin(name+"Ani", spin.FPS, spin.Frames)
	if err != nil {
		return err
	}
	player, err := animation.Begin(track, 0, spin.Frames, true)
	if err != nil {
		return err
	}
	s.AddAnimation(name, player)
	return nil
}
