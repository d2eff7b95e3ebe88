// Package scene owns the header and the spawned keys for one animation
// session and runs the per-frame loop.
package scene

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mormel/keyfall/internal/config"
	"github.com/mormel/keyfall/internal/header"
	"github.com/mormel/keyfall/internal/input"
	"github.com/mormel/keyfall/internal/key"
	"github.com/mormel/keyfall/internal/palette"
	"github.com/mormel/keyfall/internal/render"
)

// Scene is one animation session. It implements render.Game.
//
// Spawns, ticks, resizes and config swaps are serialized by mu, so the
// dynamic collection is never modified while a frame walks it.
type Scene struct {
	mu sync.Mutex

	id     string
	logger *zap.Logger
	rng    *rand.Rand

	cfg        *config.Config
	physics    key.Physics
	bounds     key.Bounds
	style      key.Style
	background color.RGBA
	input      *input.Adapter
	colors     *palette.Bright

	width, height int
	header        []*key.Key
	keys          []*key.Key

	started time.Time
	frames  uint64
	spawned uint64
	culled  uint64
	closed  bool
}

var _ render.Game = (*Scene)(nil)

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) { s.logger = l }
}

// WithRand sets the random source used for spawns, colors and header tilt.
func WithRand(r *rand.Rand) Option {
	return func(s *Scene) { s.rng = r }
}

// New starts a session. cfg must already be validated.
func New(cfg *config.Config, opts ...Option) *Scene {
	s := &Scene{
		id:      uuid.NewString(),
		logger:  zap.NewNop(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	s.apply(cfg)

	s.logger.Info("session started", zap.String("bounds_policy", s.bounds.Policy.String()))
	return s
}

// ID identifies the session in logs.
func (s *Scene) ID() string { return s.id }

// apply derives the per-frame values from cfg. Callers hold mu.
func (s *Scene) apply(cfg *config.Config) {
	s.cfg = cfg
	s.physics = key.Physics{Gravity: cfg.Physics.Gravity, MaxSpeed: cfg.Physics.MaxSpeed}
	s.bounds = boundsFrom(cfg.Bounds)
	s.style = styleFrom(cfg.Render)
	s.background = palette.MustHex(cfg.Render.Background)
	s.input = input.NewAdapter(cfg, s.rng)
	s.colors = palette.NewBright(s.rng, cfg.Color.Saturation, cfg.Color.Lightness)
}

func boundsFrom(b config.BoundsConfig) key.Bounds {
	if b.Policy == config.PolicyMargin {
		return key.Bounds{Policy: key.Margin, Margin: b.Margin}
	}
	return key.Bounds{Policy: key.SpeedGated}
}

func styleFrom(r config.RenderConfig) key.Style {
	return key.Style{
		Fill:        palette.MustHex(r.Fill),
		Outline:     palette.MustHex(r.Outline),
		Text:        palette.MustHex(r.Text),
		CornerRatio: r.CornerRatio,
		StrokeRatio: r.StrokeRatio,
		MinStroke:   r.MinStroke,
		WidthStep:   r.WidthStep,
		LabelInset:  r.LabelInset,
		Glow:        render.Shadow{OffsetX: r.Glow.OffsetX, OffsetY: r.Glow.OffsetY, Blur: r.Glow.Blur},
		LabelGlow:   render.Shadow{OffsetX: r.LabelGlow.OffsetX, OffsetY: r.LabelGlow.OffsetY, Blur: r.LabelGlow.Blur},
	}
}

// ApplyConfig swaps tunables mid-session and rebuilds the header.
// Keys already falling keep their current state.
func (s *Scene) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.apply(cfg)
	s.relayout()
	s.logger.Info("config applied", zap.String("bounds_policy", s.bounds.Policy.String()))
}

// OnInit implements render.Game.
func (s *Scene) OnInit(width, height int) {
	s.resize(width, height, "init")
}

// OnResize implements render.Game.
func (s *Scene) OnResize(width, height int) {
	s.resize(width, height, "resize")
}

func (s *Scene) resize(width, height int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.width, s.height = width, height
	s.relayout()
	s.logger.Debug("surface "+reason,
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("header_keys", len(s.header)))
}

// relayout rebuilds the header from scratch. Callers hold mu.
func (s *Scene) relayout() {
	w := float64(s.width)
	l := header.Compute(w, s.cfg.Header)
	params := header.Place(l, w, s.cfg.Header, s.rng, s.colors.Next)

	keys := make([]*key.Key, 0, len(params))
	for _, p := range params {
		k, err := key.New(p)
		if err != nil {
			s.logger.Debug("skipping header letter", zap.String("label", p.Label), zap.Error(err))
			continue
		}
		keys = append(keys, k)
	}
	s.header = keys
}

// Spawn adds a key to the dynamic collection. The collection is not capped.
func (s *Scene) Spawn(p key.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawn(p)
}

func (s *Scene) spawn(p key.Params) error {
	if s.closed {
		return ErrClosed
	}
	k, err := key.New(p)
	if err != nil {
		return fmt.Errorf("spawn %q: %w", p.Label, err)
	}
	s.keys = append(s.keys, k)
	s.spawned++
	return nil
}

// OnKeyEvent implements render.Game.
func (s *Scene) OnKeyEvent(ev render.KeyEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	p, ok := s.input.KeyPress(ev, float64(s.width), float64(s.height))
	if !ok {
		s.logger.Debug("ignoring key without label", zap.String("code", ev.Code))
		return
	}
	if err := s.spawn(p); err != nil {
		s.logger.Debug("dropping key event", zap.Error(err))
	}
}

// OnPointerEvent implements render.Game.
func (s *Scene) OnPointerEvent(ev render.PointerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	p := s.input.PointerClick(ev, float64(s.width), float64(s.height))
	if err := s.spawn(p); err != nil {
		s.logger.Debug("dropping pointer event", zap.Error(err))
	}
}

// OnTick implements render.Game.
func (s *Scene) OnTick(surface render.Surface) {
	s.Tick(surface)
}

// Tick runs one frame: background, header, then render, advance and bounds
// check for every spawned key, and finally drops the dead ones.
func (s *Scene) Tick(surface render.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	surface.Fill(s.background)

	for _, k := range s.header {
		k.Render(surface, s.style)
	}

	_, h := surface.Size()
	height := float64(h)
	for _, k := range s.keys {
		k.Render(surface, s.style)
		k.Advance(s.physics)
		k.CheckBounds(height, s.bounds)
	}

	before := len(s.keys)
	s.keys = cull(s.keys)
	s.culled += uint64(before - len(s.keys))
	s.frames++
}

// cull returns the live keys in their original order.
func cull(keys []*key.Key) []*key.Key {
	live := make([]*key.Key, 0, len(keys))
	for _, k := range keys {
		if k.Alive() {
			live = append(live, k)
		}
	}
	return live
}

// Keys returns a snapshot of the spawned keys.
func (s *Scene) Keys() []*key.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*key.Key(nil), s.keys...)
}

// Header returns a snapshot of the header keys.
func (s *Scene) Header() []*key.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*key.Key(nil), s.header...)
}

// Len is the number of spawned keys still alive.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Stats summarizes the session so far.
type Stats struct {
	Frames  uint64
	Spawned uint64
	Culled  uint64
	Live    int
	Header  int
}

// Stats returns the session counters.
func (s *Scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Frames:  s.frames,
		Spawned: s.spawned,
		Culled:  s.culled,
		Live:    len(s.keys),
		Header:  len(s.header),
	}
}

// Close ends the session and drops both collections. Hooks called after
// Close do nothing.
func (s *Scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.logger.Info("session ended",
		zap.Duration("uptime", time.Since(s.started)),
		zap.Uint64("frames", s.frames),
		zap.Uint64("spawned", s.spawned),
		zap.Uint64("culled", s.culled),
		zap.Int("live", len(s.keys)))
	s.header = nil
	s.keys = nil
}
