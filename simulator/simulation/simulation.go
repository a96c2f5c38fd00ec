package simulation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"orrery/simulator/animation"
	"orrery/simulator/model"
	"orrery/simulator/orbit"
	"orrery/simulator/trail"
)

var (
	ErrUnknownBody   = errors.New("unknown body")
	ErrDuplicateBody = errors.New("body already attached")
)

// Handle identifies an attached body.
type Handle int

// TrailOptions size the trail of every attached body.
type TrailOptions struct {
	Density float64
	Width   float64
}

// Body is one attached orbiting body. All fields are owned by the System.
type Body struct {
	Spec  model.BodySpec
	State orbit.State

	trail    *trail.Emitter
	onUpdate func(model.Vec3)
}

// System is the scene host: it owns the attached bodies and animations and
// is advanced once per rendered frame. The lock lets HTTP handlers read
// while the render loop writes.
type System struct {
	Star      *model.Star
	TrailOpts TrailOptions

	mu         sync.Mutex
	logger     hclog.Logger
	next       Handle
	bodies     map[Handle]*Body
	order      []Handle
	animations []*Animation
	frame      uint64
	elapsed    float64
}

// Animation binds a player to the scene node it animates.
type Animation struct {
	Target string
	Player *animation.Player
}

func New(star *model.Star, opts TrailOptions, logger hclog.Logger) *System {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &System{
		Star:      star,
		TrailOpts: opts,
		logger:    logger.Named("simulation"),
		bodies:    make(map[Handle]*Body),
	}
}

// Attach registers a body. onPositionUpdate, if not nil, receives the
// body's position after each advance. A failed Attach leaves the system
// unchanged.
func (s *System) Attach(spec model.BodySpec, onPositionUpdate func(model.Vec3)) (Handle, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	if s.Star == nil {
		return 0, fmt.Errorf("body %q: no central star: %w", spec.Name, orbit.ErrInvalidGravParam)
	}
	state, err := orbit.NewState(spec, s.Star.GM)
	if err != nil {
		return 0, err
	}
	capacity, err := trail.Capacity(spec.OrbitRadius, s.TrailOpts.Density)
	if err != nil {
		return 0, fmt.Errorf("body %q: %w", spec.Name, err)
	}
	em, err := trail.NewEmitter(capacity, s.TrailOpts.Width)
	if err != nil {
		return 0, fmt.Errorf("body %q: %w", spec.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bodies {
		if b.Spec.Name == spec.Name {
			return 0, fmt.Errorf("body %q: %w", spec.Name, ErrDuplicateBody)
		}
	}
	h := s.next
	s.next++
	s.bodies[h] = &Body{Spec: spec, State: state, trail: em, onUpdate: onPositionUpdate}
	s.order = append(s.order, h)

	s.logger.Debug("attached body", "name", spec.Name, "radius", spec.OrbitRadius,
		"omega", state.Omega, "period", state.Period(), "trail_capacity", capacity)
	return h, nil
}

// Detach removes a body. Its callback is never invoked again.
func (s *System) Detach(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bodies[h]; !ok {
		return fmt.Errorf("handle %d: %w", h, ErrUnknownBody)
	}
	delete(s.bodies, h)
	for i, o := range s.order {
		if o == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Advance moves one body dt seconds along its orbit. A zero dt changes
// nothing: no trail sample is recorded and the callback is not invoked.
func (s *System) Advance(h Handle, dt float64) error {
	s.mu.Lock()
	b, ok := s.bodies[h]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("handle %d: %w", h, ErrUnknownBody)
	}
	pos, moved, err := s.advanceLocked(b, dt)
	cb := b.onUpdate
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if moved && cb != nil {
		cb(pos)
	}
	return nil
}

// advanceLocked reports whether the body moved. The trail only records
// real moves so that repeated samples never pile up at its head.
func (s *System) advanceLocked(b *Body, dt float64) (model.Vec3, bool, error) {
	next, err := orbit.Advance(b.State, dt)
	if err != nil {
		return b.State.Position, false, fmt.Errorf("body %q: %w", b.Spec.Name, err)
	}
	if dt == 0 {
		return next.Position, false, nil
	}
	b.State = next
	b.trail.Emit(next.Position)
	return next.Position, true, nil
}

// Step is one render-loop tick: every body and every animation is moved dt
// seconds forward. Callbacks run after the lock is released, in attach
// order.
func (s *System) Step(dt float64) error {
	if !orbit.ValidTimestep(dt) {
		return fmt.Errorf("dt %v: %w", dt, orbit.ErrInvalidTimestep)
	}
	type update struct {
		cb  func(model.Vec3)
		pos model.Vec3
	}

	s.mu.Lock()
	updates := make([]update, 0, len(s.order))
	for _, h := range s.order {
		b := s.bodies[h]
		pos, moved, err := s.advanceLocked(b, dt)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		if moved && b.onUpdate != nil {
			updates = append(updates, update{b.onUpdate, pos})
		}
	}
	for _, a := range s.animations {
		a.Player.Advance(dt)
	}
	s.frame++
	s.elapsed += dt
	s.mu.Unlock()

	for _, u := range updates {
		u.cb(u.pos)
	}
	return nil
}

// AddAnimation schedules player on target. The system advances it on every
// Step, independently of the orbits.
func (s *System) AddAnimation(target string, player *animation.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animations = append(s.animations, &Animation{Target: target, Player: player})
}

// AnimationValue reports the current value of the first animation bound to
// target.
func (s *System) AnimationValue(target string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.animations {
		if a.Target == target {
			return a.Player.Value(), true
		}
	}
	return 0, false
}

// Trail returns the body's trail samples, oldest first.
func (s *System) Trail(h Handle) ([]model.Vec3, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bodies[h]
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", h, ErrUnknownBody)
	}
	return b.trail.Samples(), nil
}

func (s *System) Ribbon(h Handle) (trail.Ribbon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bodies[h]
	if !ok {
		return trail.Ribbon{}, fmt.Errorf("handle %d: %w", h, ErrUnknownBody)
	}
	return b.trail.Ribbon(), nil
}

// Lookup finds the handle of the body called name.
func (s *System) Lookup(name string) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.order {
		if s.bodies[h].Spec.Name == name {
			return h, true
		}
	}
	return 0, false
}

// Handles lists attached bodies in attach order.
func (s *System) Handles() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Handle(nil), s.order...)
}

func (s *System) State(h Handle) (orbit.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bodies[h]
	if !ok {
		return orbit.State{}, fmt.Errorf("handle %d: %w", h, ErrUnknownBody)
	}
	return b.State, nil
}
