// Package session keeps the ratings a user gave while exploring and formats
// them as CSV.
package session

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// TimestampLayout matches ISO-8601 UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var (
	ErrNoCurrent     = errors.New("session: no parameters to rate")
	ErrUnknownRating = errors.New("session: rating must be good or bad")
)

type Rating string

const (
	Good Rating = "good"
	Bad  Rating = "bad"
)

func ParseRating(s string) (Rating, error) {
	switch r := Rating(strings.ToLower(strings.TrimSpace(s))); r {
	case Good, Bad:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRating, s)
}

type Record struct {
	Timestamp string        `json:"timestamp"`
	Rating    Rating        `json:"rating"`
	Params    dynamo.Params `json:"params"`
}

// Session is the in-memory rating list for one user. It is safe for
// concurrent use.
type Session struct {
	ID string

	mu      sync.Mutex
	current *dynamo.Params
	records []Record
	now     func() time.Time
}

func New() *Session {
	return &Session{ID: uuid.NewString(), now: time.Now}
}

// SetClock replaces the timestamp source.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// SetCurrent records which parameters are on screen.
func (s *Session) SetCurrent(p dynamo.Params) {
	s.mu.Lock()
	s.current = &p
	s.mu.Unlock()
}

func (s *Session) Current() (dynamo.Params, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return dynamo.Params{}, false
	}
	return *s.current, true
}

// Rate appends a record for the current parameters.
func (s *Session) Rate(r Rating) (Record, error) {
	if r != Good && r != Bad {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownRating, r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Record{}, ErrNoCurrent
	}
	rec := Record{
		Timestamp: s.now().UTC().Format(TimestampLayout),
		Rating:    r,
		Params:    *s.current,
	}
	s.records = append(s.records, rec)
	return rec, nil
}

// Records returns a copy of the ratings in insertion order.
func (s *Session) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Session) WriteCSV(w io.Writer) error {
	_, err := io.WriteString(w, ExportCSV(s.Records()))
	return err
}

func (s *Session) SaveCSV(path string) error {
	return os.WriteFile(path, []byte(ExportCSV(s.Records())), 0644)
}

var csvHeader = []string{"timestamp", "rating", "alpha", "sigma", "mu"}

// ExportCSV renders records as CSV rows under a fixed header. Rows are
// joined by newlines with no trailing newline, and floats use the shortest
// decimal form that reads back to the same value.
func ExportCSV(records []Record) string {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for _, r := range records {
		lines = append(lines, strings.Join([]string{
			r.Timestamp,
			string(r.Rating),
			formatFloat(r.Params.Alpha),
			formatFloat(r.Params.Sigma),
			formatFloat(r.Params.Mu),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// formatFloat writes the shortest decimal that reads back as f, switching
// to exponent form outside [1e-6, 1e21) the way browsers print numbers.
func formatFloat(f float64) string {
	switch {
	case f == 0:
		return "0"
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if a := math.Abs(f); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// Go pads the exponent to two digits: 1e-07 becomes 1e-7
	s := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.IndexByte(s, 'e')
	return s[:i+2] + strings.TrimLeft(s[i+2:], "0")
}
