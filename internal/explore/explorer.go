package explore

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/logging"
	"github.com/san-kum/mirasim/internal/session"
	"github.com/san-kum/mirasim/internal/viz"
)

// DefaultRandomAttempts bounds how many random draws ShowRandom makes
// before giving up on finding a renderable orbit.
const DefaultRandomAttempts = 10

// Explorer holds one user's exploration state. Candidate states are built
// without side effects; Commit adopts a frame that was drawn successfully.
type Explorer struct {
	mu      sync.Mutex
	state   State
	shown   bool
	rng     *rand.Rand
	session *session.Session
	presets []string
	logger  *log.Logger
}

func New(initial State, sess *session.Session, rng *rand.Rand, logger *log.Logger) *Explorer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Explorer{
		state:   initial,
		rng:     rng,
		session: sess,
		presets: config.PresetNames(),
		logger:  logger,
	}
}

func (e *Explorer) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Explorer) Session() *session.Session { return e.session }

// Random keeps the current window and style and draws fresh parameters.
func (e *Explorer) Random() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state
	st.Params = config.RandomParams(e.rng)
	st.Source = SourceRandom
	st.Preset = ""
	return st
}

func (e *Explorer) Preset(name string) (State, error) {
	p, ok := config.LookupPreset(name)
	if !ok {
		return State{}, fmt.Errorf("unknown preset: %s", name)
	}
	st := e.State()
	st.Params = p.Params
	st.Variant = p.Variant
	st.Source = SourcePreset
	st.Preset = p.Name
	return st, nil
}

// StepPreset moves delta places through the sorted preset list, wrapping
// around. From a non-preset state it starts at the first preset.
func (e *Explorer) StepPreset(delta int) State {
	st := e.State()
	idx := -1
	if st.Source == SourcePreset {
		for i, name := range e.presets {
			if name == st.Preset {
				idx = i
				break
			}
		}
	}
	n := len(e.presets)
	next := 0
	if idx >= 0 {
		next = ((idx+delta)%n + n) % n
	}
	st, _ = e.Preset(e.presets[next])
	return st
}

func (e *Explorer) Manual(alpha, sigma, mu string) (State, error) {
	p, err := config.ParseParams(alpha, sigma, mu)
	if err != nil {
		return State{}, err
	}
	st := e.State()
	st.Params = p
	st.Source = SourceManual
	st.Preset = ""
	return st, nil
}

func (e *Explorer) WithVariant(v dynamo.Variant) State {
	st := e.State()
	st.Variant = v
	return st
}

func (e *Explorer) ToggleVariant() State {
	if e.State().Variant == dynamo.Simple {
		return e.WithVariant(dynamo.Standard)
	}
	return e.WithVariant(dynamo.Simple)
}

// WithWindow changes the iteration window. The result is validated so the
// caller can reject it before rendering.
func (e *Explorer) WithWindow(iterations, skip int) (State, error) {
	st := e.State()
	st.Gen.Iterations = iterations
	st.Gen.Skip = skip
	if err := st.Gen.Validate(); err != nil {
		return State{}, err
	}
	return st, nil
}

func (e *Explorer) WithViewport(vp viz.Viewport) State {
	st := e.State()
	st.Viewport = vp
	return st
}

// Commit makes f's state current and tells the session which parameters
// are on screen.
func (e *Explorer) Commit(f Frame) {
	e.mu.Lock()
	e.state = f.State
	e.shown = true
	e.mu.Unlock()
	if e.session != nil {
		e.session.SetCurrent(f.State.Params)
	}
	e.logger.Debug("frame committed", "state", f.State, "points", len(f.Points), "elapsed", f.Elapsed)
}

// Show draws st on s and commits it on success.
func (e *Explorer) Show(ctx context.Context, s viz.Surface, st State) (Frame, error) {
	f, err := Visualize(ctx, s, st)
	if err != nil {
		e.logger.Warn("visualization rejected", "state", st, "err", err)
		return Frame{}, err
	}
	e.Commit(f)
	return f, nil
}

// ShowRandom draws random parameters until one renders or attempts run out.
// Only divergence triggers another draw.
func (e *Explorer) ShowRandom(ctx context.Context, s viz.Surface, attempts int) (Frame, error) {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		var f Frame
		st := e.Random()
		f, err = Visualize(ctx, s, st)
		if err == nil {
			e.Commit(f)
			return f, nil
		}
		if !errors.Is(err, dynamo.ErrDiverged) {
			return Frame{}, err
		}
		e.logger.Debug("random draw diverged", "params", st.Params, "attempt", i+1)
	}
	e.logger.Warn("no renderable random parameters", "attempts", attempts)
	return Frame{}, err
}

// Rate records a rating for the parameters on screen and rerolls.
func (e *Explorer) Rate(ctx context.Context, s viz.Surface, r session.Rating) (session.Record, Frame, error) {
	if e.session == nil {
		return session.Record{}, Frame{}, session.ErrNoCurrent
	}
	rec, err := e.session.Rate(r)
	if err != nil {
		return session.Record{}, Frame{}, err
	}
	e.logger.Info("rated", "rating", rec.Rating, "params", rec.Params)
	f, err := e.ShowRandom(ctx, s, DefaultRandomAttempts)
	return rec, f, err
}

// Shown reports whether any frame has been committed.
func (e *Explorer) Shown() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shown
}

// Resize changes the viewport of the current state without drawing, for
// shells whose surface changed size.
func (e *Explorer) Resize(vp viz.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Viewport = vp
}
