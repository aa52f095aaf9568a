package explore_test

import (
	"context"
	"image/color"
	"math/rand"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/explore"
	"github.com/san-kum/mirasim/internal/session"
)

// countingSurface counts the calls that change pixels.
type countingSurface struct {
	rects, arcs, fills int
}

func (c *countingSurface) SetFillColor(color.Color)                    {}
func (c *countingSurface) FillRect(x, y, w, h float64)                 { c.rects++ }
func (c *countingSurface) BeginPath()                                  {}
func (c *countingSurface) MoveTo(x, y float64)                         {}
func (c *countingSurface) Arc(cx, cy, r, startAngle, endAngle float64) { c.arcs++ }
func (c *countingSurface) Fill()                                       { c.fills++ }

func (c *countingSurface) touched() bool { return c.rects+c.arcs+c.fills > 0 }

func smallState() explore.State {
	st := explore.DefaultState()
	st.Gen.Iterations = 2000
	return st
}

var _ = Describe("Visualize", func() {
	It("draws one disc per kept point", func() {
		st := smallState()
		st.Gen.Skip = 500
		s := &countingSurface{}

		f, err := explore.Visualize(context.Background(), s, st)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Points).To(HaveLen(1500))
		Expect(s.arcs).To(Equal(1500))
		Expect(s.fills).To(Equal(1))
		Expect(f.Metrics).To(HaveKey("coverage"))
		Expect(f.State).To(Equal(st))
	})

	It("rejects a divergent orbit without drawing", func() {
		st := smallState()
		st.Variant = dynamo.Simple
		st.Params.Mu = 1.5
		st.Gen.Initial = dynamo.Point{X: 1e200, Y: 1e200}
		s := &countingSurface{}

		_, err := explore.Visualize(context.Background(), s, st)
		Expect(err).To(MatchError(dynamo.ErrDiverged))
		Expect(s.touched()).To(BeFalse())
	})

	It("rejects an empty window without drawing", func() {
		st := smallState()
		st.Gen.Skip = st.Gen.Iterations
		s := &countingSurface{}

		_, err := explore.Visualize(context.Background(), s, st)
		Expect(err).To(MatchError(dynamo.ErrEmptySequence))
		Expect(s.touched()).To(BeFalse())
	})

	It("stops when the request is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := &countingSurface{}

		_, err := explore.Visualize(ctx, s, smallState())
		Expect(err).To(MatchError(context.Canceled))
		Expect(s.touched()).To(BeFalse())
	})
})

var _ = Describe("Explorer", func() {
	var (
		e    *explore.Explorer
		sess *session.Session
		s    *countingSurface
		ctx  context.Context
	)

	BeforeEach(func() {
		sess = session.New()
		e = explore.New(smallState(), sess, rand.New(rand.NewSource(1)), nil)
		s = &countingSurface{}
		ctx = context.Background()
	})

	It("starts on the classic preset with nothing shown", func() {
		Expect(e.State().Preset).To(Equal("classic"))
		Expect(e.Shown()).To(BeFalse())
		_, ok := sess.Current()
		Expect(ok).To(BeFalse())
	})

	It("commits a shown frame into the session", func() {
		_, err := e.Show(ctx, s, e.State())
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Shown()).To(BeTrue())

		p, ok := sess.Current()
		Expect(ok).To(BeTrue())
		Expect(p).To(Equal(config.ClassicParams))
	})

	It("keeps the previous state when a request fails", func() {
		_, err := e.Show(ctx, s, e.State())
		Expect(err).NotTo(HaveOccurred())
		before := e.State()

		bad, err := e.WithWindow(100, 100)
		Expect(err).NotTo(HaveOccurred())
		_, err = e.Show(ctx, s, bad)
		Expect(err).To(HaveOccurred())
		Expect(e.State()).To(Equal(before))
	})

	It("rejects bad manual input at the boundary", func() {
		_, err := e.Manual("0.1", "abc", "0.3")
		Expect(err).To(MatchError(dynamo.ErrInvalidParams))

		st, err := e.Manual("0.1", "0.2", "0.3")
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Params).To(Equal(dynamo.Params{Alpha: 0.1, Sigma: 0.2, Mu: 0.3}))
		Expect(st.Source).To(Equal(explore.SourceManual))
	})

	It("rejects windows that skip past the end", func() {
		_, err := e.WithWindow(100, 101)
		Expect(err).To(MatchError(dynamo.ErrSkipExceedsTotal))
	})

	It("walks the preset list with wraparound", func() {
		st := e.StepPreset(1)
		Expect(st.Preset).To(Equal("known-01"))

		_, err := e.Show(ctx, s, e.StepPreset(-1))
		Expect(err).NotTo(HaveOccurred())
		Expect(e.State().Preset).To(Equal("known-28"))
		Expect(e.StepPreset(1).Preset).To(Equal("classic"))
	})

	It("toggles the variant", func() {
		Expect(e.ToggleVariant().Variant).To(Equal(dynamo.Simple))
		Expect(e.WithVariant(dynamo.Simple).Variant).To(Equal(dynamo.Simple))

		_, err := e.Show(ctx, s, e.WithVariant(dynamo.Simple))
		Expect(err).NotTo(HaveOccurred())
		Expect(e.ToggleVariant().Variant).To(Equal(dynamo.Standard))
	})

	It("draws random parameters in range", func() {
		st := e.Random()
		Expect(st.Source).To(Equal(explore.SourceRandom))
		Expect(st.Params.Alpha).To(BeNumerically(">=", 0))
		Expect(st.Params.Alpha).To(BeNumerically("<", 1))
		Expect(st.Params.Mu).To(BeNumerically(">=", -1))
		Expect(st.Params.Mu).To(BeNumerically("<", 1))
	})

	It("refuses to rate before anything is shown", func() {
		_, _, err := e.Rate(ctx, s, session.Good)
		Expect(err).To(MatchError(session.ErrNoCurrent))
	})

	It("rates the shown parameters", func() {
		_, err := e.Show(ctx, s, e.State())
		Expect(err).NotTo(HaveOccurred())

		rec, _, _ := e.Rate(ctx, s, session.Bad)
		Expect(rec.Params).To(Equal(config.ClassicParams))
		Expect(rec.Rating).To(Equal(session.Bad))
		Expect(sess.Records()).To(HaveLen(1))
	})
})

var _ = Describe("Latest", func() {
	It("cancels the superseded request", func() {
		var l explore.Latest
		ctx1, seq1 := l.Start(context.Background())
		ctx2, seq2 := l.Start(context.Background())

		Expect(seq2).To(BeNumerically(">", seq1))
		Expect(ctx1.Err()).To(MatchError(context.Canceled))
		Expect(ctx2.Err()).NotTo(HaveOccurred())
		Expect(l.Current(seq1)).To(BeFalse())
		Expect(l.Current(seq2)).To(BeTrue())
	})

	It("delivers only the newest result", func() {
		var l explore.Latest
		_, old := l.Start(context.Background())
		_, cur := l.Start(context.Background())

		delivered := []uint64{}
		Expect(l.Deliver(old, func() { delivered = append(delivered, old) })).To(BeFalse())
		Expect(l.Deliver(cur, func() { delivered = append(delivered, cur) })).To(BeTrue())
		Expect(delivered).To(Equal([]uint64{cur}))
	})

	It("stops the in-flight request", func() {
		var l explore.Latest
		ctx, seq := l.Start(context.Background())
		l.Stop()
		Expect(ctx.Err()).To(HaveOccurred())
		Expect(l.Current(seq)).To(BeFalse())
	})

	It("lets only the last of many concurrent renders through", func() {
		var (
			l         explore.Latest
			mu        sync.Mutex
			delivered []uint64
			wg        sync.WaitGroup
		)

		type request struct {
			ctx context.Context
			seq uint64
		}
		reqs := make([]request, 20)
		for i := range reqs {
			reqs[i].ctx, reqs[i].seq = l.Start(context.Background())
		}

		for _, r := range reqs {
			wg.Add(1)
			go func(r request) {
				defer wg.Done()
				st := smallState()
				st.Gen.Iterations = 5000
				if _, err := explore.Visualize(r.ctx, &countingSurface{}, st); err != nil {
					return
				}
				l.Deliver(r.seq, func() {
					mu.Lock()
					delivered = append(delivered, r.seq)
					mu.Unlock()
				})
			}(r)
		}
		wg.Wait()

		Expect(delivered).To(Equal([]uint64{reqs[len(reqs)-1].seq}))
	})
})
