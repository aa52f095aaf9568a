package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/explore"
	"github.com/san-kum/mirasim/internal/session"
)

// Request is a client message on the websocket.
type Request struct {
	Op         string         `json:"op"`
	Preset     string         `json:"preset,omitempty"`
	Step       int            `json:"step,omitempty"`
	Params     *dynamo.Params `json:"params,omitempty"`
	Manual     *[3]string     `json:"manual,omitempty"`
	Variant    string         `json:"variant,omitempty"`
	Iterations *int           `json:"iterations,omitempty"`
	Skip       *int           `json:"skip,omitempty"`
	Rating     string         `json:"rating,omitempty"`
}

// Status is a JSON reply. A "frame" status is followed by one binary
// message holding the PNG.
type Status struct {
	Op        string         `json:"op"`
	Seq       uint64         `json:"seq,omitempty"`
	Session   string         `json:"session,omitempty"`
	State     string         `json:"state,omitempty"`
	Variant   string         `json:"variant,omitempty"`
	Params    *dynamo.Params `json:"params,omitempty"`
	Points    int            `json:"points,omitempty"`
	ElapsedMS float64        `json:"elapsed_ms,omitempty"`
	Ratings   int            `json:"ratings,omitempty"`
	Rating    string         `json:"rating,omitempty"`
	CSV       string         `json:"csv,omitempty"`
	Error     string         `json:"error,omitempty"`
}

type conn struct {
	ws     *websocket.Conn
	ex     *explore.Explorer
	latest explore.Latest
	logger *log.Logger

	// a frame is a status and a binary message that must stay adjacent
	writeMu sync.Mutex
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.origins,
	})
	if err != nil {
		s.logger.Warn("websocket accept", "err", err)
		return
	}
	defer ws.CloseNow()

	sess := s.newSession()
	defer s.dropSession(sess.ID)
	logger := s.logger.With("session", sess.ID)
	st, err := explore.StateFromConfig(s.base)
	if err != nil {
		ws.Close(websocket.StatusInternalError, err.Error())
		return
	}

	c := &conn{
		ws:     ws,
		ex:     explore.New(st, sess, s.newRNG(), logger),
		logger: logger,
	}
	defer c.latest.Stop()

	ctx := r.Context()
	logger.Info("session opened")
	if err := c.send(ctx, Status{Op: "hello", Session: sess.ID}); err != nil {
		return
	}
	c.render(ctx, st)

	for {
		var req Request
		if err := wsjson.Read(ctx, ws, &req); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				logger.Info("session closed", "ratings", sess.Len())
			} else {
				logger.Debug("read failed", "err", err)
			}
			return
		}
		if err := c.handle(ctx, req); err != nil {
			c.send(ctx, Status{Op: req.Op, Error: err.Error()})
		}
	}
}

// handle builds the candidate state synchronously so requests apply in
// arrival order; only drawing happens in the background. Relative requests
// build on the frame on screen.
func (c *conn) handle(ctx context.Context, req Request) error {
	switch req.Op {
	case "render":
		st, err := c.candidate(req)
		if err != nil {
			return err
		}
		c.render(ctx, st)
	case "random":
		c.renderRandom(ctx)
	case "preset":
		if req.Preset == "" {
			c.render(ctx, c.ex.StepPreset(req.Step))
			return nil
		}
		st, err := c.ex.Preset(req.Preset)
		if err != nil {
			return err
		}
		c.render(ctx, st)
	case "rate":
		r, err := session.ParseRating(req.Rating)
		if err != nil {
			return err
		}
		rec, err := c.ex.Session().Rate(r)
		if err != nil {
			return err
		}
		c.logger.Info("rated", "rating", rec.Rating, "params", rec.Params)
		p := rec.Params
		if err := c.send(ctx, Status{Op: "rated", Rating: string(rec.Rating), Params: &p, Ratings: c.ex.Session().Len()}); err != nil {
			return err
		}
		c.renderRandom(ctx)
	case "export":
		sess := c.ex.Session()
		return c.send(ctx, Status{Op: "export", Session: sess.ID, Ratings: sess.Len(), CSV: session.ExportCSV(sess.Records())})
	default:
		return fmt.Errorf("unknown op %q", req.Op)
	}
	return nil
}

func (c *conn) candidate(req Request) (explore.State, error) {
	st := c.ex.State()
	if req.Manual != nil {
		m, err := c.ex.Manual(req.Manual[0], req.Manual[1], req.Manual[2])
		if err != nil {
			return explore.State{}, err
		}
		st = m
	}
	if req.Params != nil {
		if err := req.Params.Validate(); err != nil {
			return explore.State{}, err
		}
		st.Params = *req.Params
		st.Source = explore.SourceManual
		st.Preset = ""
	}
	if req.Variant != "" {
		v, err := dynamo.ParseVariant(req.Variant)
		if err != nil {
			return explore.State{}, err
		}
		st.Variant = v
	}
	if req.Iterations != nil {
		st.Gen.Iterations = *req.Iterations
	}
	if req.Skip != nil {
		st.Gen.Skip = *req.Skip
	}
	if st.Gen.Iterations > maxIterations {
		return explore.State{}, fmt.Errorf("%w: more than %d", dynamo.ErrInvalidIterations, maxIterations)
	}
	if err := st.Validate(); err != nil {
		return explore.State{}, err
	}
	return st, nil
}

// render draws st in the background. A newer request supersedes it.
func (c *conn) render(ctx context.Context, st explore.State) {
	c.renderWith(ctx, func(int) explore.State { return st }, 1)
}

// renderRandom draws random parameters, retrying on divergence.
func (c *conn) renderRandom(ctx context.Context) {
	c.renderWith(ctx, func(int) explore.State { return c.ex.Random() }, explore.DefaultRandomAttempts)
}

func (c *conn) renderWith(parent context.Context, next func(attempt int) explore.State, attempts int) {
	ctx, seq := c.latest.Start(parent)

	go func() {
		var (
			data []byte
			f    explore.Frame
			err  error
		)
		for i := 0; i < attempts; i++ {
			data, f, err = renderPNG(ctx, next(i))
			if !errors.Is(err, dynamo.ErrDiverged) {
				break
			}
		}

		if err != nil {
			if ctx.Err() != nil || !c.latest.Current(seq) {
				return
			}
			c.logger.Debug("render rejected", "seq", seq, "err", err)
			c.send(parent, Status{Op: "error", Seq: seq, Error: err.Error()})
			return
		}

		delivered := c.latest.Deliver(seq, func() {
			c.ex.Commit(f)
			c.sendFrame(parent, seq, f, data)
		})
		if !delivered {
			c.logger.Debug("superseded render dropped", "seq", seq)
		}
	}()
}

func (c *conn) send(ctx context.Context, st Status) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsjson.Write(ctx, c.ws, st)
}

func (c *conn) sendFrame(ctx context.Context, seq uint64, f explore.Frame, png []byte) {
	p := f.State.Params
	status := Status{
		Op:        "frame",
		Seq:       seq,
		State:     f.State.String(),
		Variant:   f.State.Variant.String(),
		Params:    &p,
		Points:    len(f.Points),
		ElapsedMS: float64(f.Elapsed.Microseconds()) / 1000,
		Ratings:   c.ex.Session().Len(),
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := wsjson.Write(ctx, c.ws, status); err != nil {
		c.logger.Debug("write failed", "err", err)
		return
	}
	if err := c.ws.Write(ctx, websocket.MessageBinary, png); err != nil {
		c.logger.Debug("write failed", "err", err)
	}
}
