package scene

import (
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mormel/keyfall/internal/config"
	"github.com/mormel/keyfall/internal/key"
	"github.com/mormel/keyfall/internal/render"
	"github.com/mormel/keyfall/internal/render/rendertest"
)

func newScene(t *testing.T, opts ...Option) *Scene {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	s := New(config.DefaultConfig(), opts...)
	t.Cleanup(s.Close)
	return s
}

func mustKey(t *testing.T, p key.Params) *key.Key {
	t.Helper()
	if p.Size == 0 {
		p.Size = 40
	}
	if p.Label == "" {
		p.Label = "A"
	}
	k, err := key.New(p)
	require.NoError(t, err)
	return k
}

func TestCullKeepsLiveKeysInOrder(t *testing.T) {
	a := mustKey(t, key.Params{Label: "A", Y: 100})
	b := mustKey(t, key.Params{Label: "B", Y: 900, Speed: -5})
	c := mustKey(t, key.Params{Label: "C", Y: 200})
	b.CheckBounds(600, key.Bounds{})
	require.False(t, b.Alive())

	got := cull([]*key.Key{a, b, c})

	assert.Equal(t, []*key.Key{a, c}, got)
}

func TestCullEdgeCases(t *testing.T) {
	assert.Empty(t, cull(nil))

	dead := mustKey(t, key.Params{Y: 900, Speed: -1})
	dead.CheckBounds(600, key.Bounds{})
	assert.Empty(t, cull([]*key.Key{dead, dead}))
}

func TestTickRemovesOnlyDeadKeys(t *testing.T) {
	s := newScene(t)
	s.OnInit(800, 600)

	a := mustKey(t, key.Params{Label: "A", Y: 300})
	b := mustKey(t, key.Params{Label: "B", Y: 2000, Speed: -10})
	c := mustKey(t, key.Params{Label: "C", Y: 100})
	s.keys = []*key.Key{a, b, c}

	s.Tick(rendertest.New(800, 600))

	assert.Equal(t, []*key.Key{a, c}, s.Keys())
	assert.Equal(t, uint64(1), s.Stats().Culled)
}

func TestTickOrder(t *testing.T) {
	s := newScene(t)
	s.OnInit(1280, 800)
	require.NoError(t, s.Spawn(key.Params{X: 10, Y: 400, Size: 40, Label: "Z", Speed: 5}))

	rec := rendertest.New(1280, 800)
	s.Tick(rec)

	require.NotEmpty(t, rec.Ops)
	assert.Equal(t, rendertest.OpFill, rec.Ops[0].Kind, "background first")
	assert.Equal(t, color.RGBA{A: 0xff}, rec.Ops[0].Color)
	assert.True(t, rec.Balanced())

	texts := rec.Texts()
	header := s.Header()
	require.Len(t, texts, len(header)+1)
	for i, k := range header {
		assert.Equal(t, k.Label, texts[i], "header before spawned keys")
	}
	assert.Equal(t, "Z", texts[len(texts)-1])

	// Rendered at the old position, then advanced.
	translates := rec.OfKind(rendertest.OpTranslate)
	assert.Equal(t, 400.0, translates[len(translates)-1].Y)
	assert.Equal(t, 395.0, s.Keys()[0].Y)
}

func TestHeaderIsNeverUpdated(t *testing.T) {
	s := newScene(t)
	s.OnInit(1280, 800)

	before := make([]key.Key, 0)
	for _, k := range s.Header() {
		before = append(before, *k)
	}
	require.NotEmpty(t, before)

	rec := rendertest.New(1280, 800)
	for i := 0; i < 100; i++ {
		s.Tick(rec)
	}

	after := s.Header()
	require.Len(t, after, len(before))
	for i, k := range after {
		assert.Equal(t, before[i], *k)
		assert.True(t, k.Alive())
	}
}

func TestHeaderLayoutOnResize(t *testing.T) {
	s := newScene(t)

	s.OnInit(1280, 800)
	wide := s.Header()
	require.Len(t, wide, len("Mormel'swebsite"))
	for _, k := range wide {
		assert.InDelta(t, wide[0].Y, k.Y, 1e-9, "single line")
	}

	s.OnResize(700, 800)
	narrow := s.Header()
	require.Len(t, narrow, len(wide))
	assert.NotSame(t, wide[0], narrow[0], "header is rebuilt, not reused")
	assert.Greater(t, narrow[len(narrow)-1].Y, narrow[0].Y, "two lines")
	for _, k := range narrow {
		assert.GreaterOrEqual(t, k.Angle, 0.0)
		assert.Less(t, k.Angle, 360.0)
		assert.Zero(t, k.Speed)
	}
}

func TestZeroSizeSurface(t *testing.T) {
	s := newScene(t)
	s.OnInit(0, 0)
	assert.Empty(t, s.Header())

	s.OnKeyEvent(render.KeyEvent{Code: "KeyA"})
	rec := rendertest.New(0, 0)
	assert.NotPanics(t, func() { s.Tick(rec) })
}

func TestKeyEventSpawns(t *testing.T) {
	s := newScene(t)
	s.OnInit(1280, 800)

	s.OnKeyEvent(render.KeyEvent{Code: "Space"})
	s.OnKeyEvent(render.KeyEvent{Code: "KeyA"})
	s.OnKeyEvent(render.KeyEvent{})

	keys := s.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, "SPACE", keys[0].Label)
	assert.Equal(t, "A", keys[1].Label)
	for _, k := range keys {
		assert.Greater(t, k.Y, 800.0, "spawned below the bottom edge")
		assert.Greater(t, k.Speed, 0.0, "moving up")
	}
}

func TestPointerEventSpawns(t *testing.T) {
	s := newScene(t)
	s.OnInit(1280, 800)

	s.OnPointerEvent(render.PointerEvent{X: 200, Y: 50})

	keys := s.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "♥", keys[0].Label)
	assert.Equal(t, 200.0, keys[0].X)
}

func TestSpawnRejectsInvalid(t *testing.T) {
	s := newScene(t)

	err := s.Spawn(key.Params{Size: 0, Label: "A"})
	assert.ErrorIs(t, err, key.ErrInvalidSize)
	err = s.Spawn(key.Params{Size: 10})
	assert.ErrorIs(t, err, key.ErrEmptyLabel)
	assert.Zero(t, s.Len())
}

func TestSpawnedKeysEventuallyLeave(t *testing.T) {
	s := newScene(t)
	s.OnInit(1280, 800)
	for i := 0; i < 20; i++ {
		s.OnKeyEvent(render.KeyEvent{Code: "KeyK"})
	}
	require.Equal(t, 20, s.Len())

	rec := rendertest.New(1280, 800)
	for i := 0; i < 200 && s.Len() > 0; i++ {
		rec.Reset()
		s.Tick(rec)
	}

	assert.Zero(t, s.Len())
	st := s.Stats()
	assert.Equal(t, uint64(20), st.Spawned)
	assert.Equal(t, uint64(20), st.Culled)
}

func TestMarginPolicy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bounds = config.BoundsConfig{Policy: config.PolicyMargin, Margin: 500}
	require.NoError(t, cfg.Validate())

	s := New(cfg, WithRand(rand.New(rand.NewPCG(3, 3))))
	defer s.Close()
	s.OnInit(800, 600)

	rising := mustKey(t, key.Params{Y: 1200, Speed: 10})
	s.keys = []*key.Key{rising}
	s.Tick(rendertest.New(800, 600))

	assert.Zero(t, s.Len(), "margin policy culls regardless of speed")
}

func TestApplyConfig(t *testing.T) {
	s := newScene(t)
	s.OnInit(1280, 800)
	require.NoError(t, s.Spawn(key.Params{Y: 400, Size: 40, Label: "A", Speed: 0}))

	cfg := config.DefaultConfig()
	cfg.Physics.Gravity = 10
	cfg.Header.Text = "Hi"
	s.ApplyConfig(cfg)

	assert.Len(t, s.Header(), 2)

	s.Tick(rendertest.New(1280, 800))
	assert.Equal(t, -10.0, s.Keys()[0].Speed)
}

func TestCloseEndsSession(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(config.DefaultConfig(), WithLogger(zap.New(core)))
	s.OnInit(1280, 800)
	s.OnKeyEvent(render.KeyEvent{Code: "KeyA"})

	s.Close()
	s.Close()

	assert.Empty(t, s.Keys())
	assert.Empty(t, s.Header())
	assert.ErrorIs(t, s.Spawn(key.Params{Size: 10, Label: "A"}), ErrClosed)

	s.OnKeyEvent(render.KeyEvent{Code: "KeyB"})
	s.OnResize(600, 600)
	rec := rendertest.New(600, 600)
	s.Tick(rec)
	assert.Empty(t, rec.Ops)
	assert.Empty(t, s.Header())

	ended := logs.FilterMessage("session ended").All()
	require.Len(t, ended, 1)
	assert.Equal(t, s.ID(), ended[0].ContextMap()["session"])
	assert.Equal(t, uint64(1), ended[0].ContextMap()["spawned"])
}
