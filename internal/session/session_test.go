package session_test

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/session"
)

var _ = Describe("ExportCSV", func() {
	It("formats a single record exactly", func() {
		records := []session.Record{{
			Timestamp: "t1",
			Rating:    session.Good,
			Params:    dynamo.Params{Alpha: 0.1, Sigma: 0.2, Mu: 0.3},
		}}
		Expect(session.ExportCSV(records)).To(Equal("timestamp,rating,alpha,sigma,mu\nt1,good,0.1,0.2,0.3"))
	})

	It("emits only the header for no records", func() {
		Expect(session.ExportCSV(nil)).To(Equal("timestamp,rating,alpha,sigma,mu"))
	})

	It("keeps insertion order and full precision", func() {
		records := []session.Record{
			{Timestamp: "a", Rating: session.Bad, Params: dynamo.Params{Alpha: 0.8244391555, Sigma: 0.1774071817, Mu: -0.5116492043}},
			{Timestamp: "b", Rating: session.Good, Params: dynamo.Params{Alpha: 1, Sigma: 0, Mu: -1}},
		}
		Expect(session.ExportCSV(records)).To(Equal(
			"timestamp,rating,alpha,sigma,mu\n" +
				"a,bad,0.8244391555,0.1774071817,-0.5116492043\n" +
				"b,good,1,0,-1"))
	})

	It("switches to exponent form for tiny values like a browser", func() {
		records := []session.Record{
			{Timestamp: "a", Rating: session.Good, Params: dynamo.Params{Alpha: 1e-7, Sigma: 1.5e-7, Mu: -2.5e-10}},
			{Timestamp: "b", Rating: session.Bad, Params: dynamo.Params{Alpha: 0.000001, Sigma: 0.009, Mu: -0.801}},
		}
		Expect(session.ExportCSV(records)).To(Equal(
			"timestamp,rating,alpha,sigma,mu\n" +
				"a,good,1e-7,1.5e-7,-2.5e-10\n" +
				"b,bad,0.000001,0.009,-0.801"))
	})
})

var _ = Describe("Session", func() {
	var (
		s     *session.Session
		clock time.Time
	)

	BeforeEach(func() {
		s = session.New()
		clock = time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.FixedZone("CET", 3600))
		s.SetClock(func() time.Time { return clock })
	})

	It("has a unique id", func() {
		Expect(s.ID).NotTo(BeEmpty())
		Expect(session.New().ID).NotTo(Equal(s.ID))
	})

	It("refuses to rate before any parameters are shown", func() {
		_, err := s.Rate(session.Good)
		Expect(err).To(MatchError(session.ErrNoCurrent))
		Expect(s.Len()).To(BeZero())
	})

	It("rejects unknown ratings", func() {
		s.SetCurrent(dynamo.Params{})
		_, err := s.Rate("meh")
		Expect(err).To(MatchError(session.ErrUnknownRating))
	})

	It("records the current parameters with a UTC timestamp", func() {
		p := dynamo.Params{Alpha: 0.009, Sigma: 0.05, Mu: -0.801}
		s.SetCurrent(p)

		rec, err := s.Rate(session.Good)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Params).To(Equal(p))
		Expect(rec.Timestamp).To(Equal("2024-03-09T13:05:07.123Z"))
		Expect(s.Records()).To(ConsistOf(rec))
	})

	It("returns a copy of the records", func() {
		s.SetCurrent(dynamo.Params{Mu: 0.5})
		_, _ = s.Rate(session.Bad)

		recs := s.Records()
		recs[0].Rating = session.Good
		Expect(s.Records()[0].Rating).To(Equal(session.Bad))
	})

	It("writes and saves the export", func() {
		s.SetCurrent(dynamo.Params{Alpha: 0.1, Sigma: 0.2, Mu: 0.3})
		_, _ = s.Rate(session.Good)
		want := "timestamp,rating,alpha,sigma,mu\n2024-03-09T13:05:07.123Z,good,0.1,0.2,0.3"

		var buf bytes.Buffer
		Expect(s.WriteCSV(&buf)).To(Succeed())
		Expect(buf.String()).To(Equal(want))

		path := filepath.Join(GinkgoT().TempDir(), "gumowski-results.csv")
		Expect(s.SaveCSV(path)).To(Succeed())
		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(want))
	})

	It("is safe for concurrent raters", func() {
		s.SetCurrent(dynamo.Params{})
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = s.Rate(session.Good)
			}()
		}
		wg.Wait()
		Expect(s.Len()).To(Equal(50))
	})
})

var _ = DescribeTable("ParseRating",
	func(in string, want session.Rating, ok bool) {
		got, err := session.ParseRating(in)
		if !ok {
			Expect(err).To(MatchError(session.ErrUnknownRating))
			return
		}
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	},
	Entry("good", "good", session.Good, true),
	Entry("upper case", " BAD ", session.Bad, true),
	Entry("unknown", "fine", session.Rating(""), false),
)
