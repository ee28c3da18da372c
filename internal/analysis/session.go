// Package analysis owns the analysis session: it fetches and parses the primary
// and optional secondary indicator series, publishes them as one immutable
// State, and decides whether that State is complete enough to render.
//
// A fetch failure is a fatal environment failure: the message is shown, kept on
// screen for a moment and the process exits. A fetch abandoned because the
// caller's context ended is returned as an error instead. Sparse or null data is not an
// error here; it only makes the dataset invalid.
package analysis

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/errsink"
	"github.com/rewired-gh/countrystats/internal/logger"
	"github.com/rewired-gh/countrystats/internal/models"
	"github.com/rewired-gh/countrystats/internal/worldbank"
)

const (
	msgFetchFailed = "ERROR READING API"
	msgParseFailed = "ERROR PARSING API RESPONSE"
)

// Fetcher retrieves one raw response body per call.
type Fetcher interface {
	Fetch(ctx context.Context, spec worldbank.RequestSpec) (string, error)
}

// Recorder is told about every validated state.
type Recorder interface {
	Record(ctx context.Context, state *models.State) error
}

// Selection is what the user asked for. An inverted year range is allowed
// here and reported by validation.
type Selection struct {
	Country   catalog.CountrySelector
	Indicator catalog.IndicatorSelector
	StartYear int
	EndYear   int
}

// Options configures a Session. Builder, Fetcher and Sink are required.
type Options struct {
	Builder    *worldbank.Builder
	Fetcher    Fetcher
	Sink       errsink.Sink
	Recorder   Recorder
	FatalDelay time.Duration

	// Exit terminates the process after a fatal fetch failure. Defaults to os.Exit.
	Exit  func(code int)
	Sleep func(d time.Duration)
	Now   func() time.Time
	NewID func() string
}

// Session holds the single analysis state of a running process. Recalculate
// and Validate must not be called concurrently; Current and CountryChanged may
// be called from any goroutine.
type Session struct {
	builder    *worldbank.Builder
	fetcher    Fetcher
	sink       errsink.Sink
	recorder   Recorder
	fatalDelay time.Duration
	exit       func(code int)
	sleep      func(d time.Duration)
	now        func() time.Time
	newID      func() string

	state atomic.Pointer[models.State]
}

// NewSession creates a Session holding the default state.
func NewSession(opts Options) *Session {
	s := &Session{
		builder:    opts.Builder,
		fetcher:    opts.Fetcher,
		sink:       opts.Sink,
		recorder:   opts.Recorder,
		fatalDelay: opts.FatalDelay,
		exit:       opts.Exit,
		sleep:      opts.Sleep,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if s.exit == nil {
		s.exit = os.Exit
	}
	if s.sleep == nil {
		s.sleep = time.Sleep
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.state.Store(models.DefaultState())
	return s
}

// Current returns the published state.
func (s *Session) Current() *models.State {
	return s.state.Load()
}

// CountryChanged reports whether the last recalculation switched country.
func (s *Session) CountryChanged() bool {
	return s.state.Load().CountryChanged()
}

// Recalculate fetches the primary series and, for a non-primary indicator, the
// secondary series, then publishes them together with sel as a new unvalidated
// State. Nothing is published when a fetch or parse fails.
func (s *Session) Recalculate(ctx context.Context, sel Selection) (*models.State, error) {
	s.sink.Clear()

	logger.Info("Recalculating analysis (country: %s, indicator: %s, years: %d-%d)",
		catalog.CountryCode(sel.Country), catalog.IndicatorAt(sel.Indicator).Code, sel.StartYear, sel.EndYear)

	primary, err := s.cycle(ctx, sel.Country, catalog.PrimaryIndicator, sel.StartYear, sel.EndYear)
	if err != nil {
		return nil, err
	}

	secondary := models.NewSeries()
	if !sel.Indicator.IsPrimary() {
		secondary, err = s.cycle(ctx, sel.Country, sel.Indicator, sel.StartYear, sel.EndYear)
		if err != nil {
			return nil, err
		}
	}

	prev := s.state.Load()
	next := models.NewState(models.StateParams{
		ID:        s.newID(),
		Country:   sel.Country,
		Indicator: sel.Indicator,
		StartYear: sel.StartYear,
		EndYear:   sel.EndYear,
		Primary:   primary,
		Secondary: secondary,
		FetchedAt: s.now(),

		CountryChanged: prev.Country() != sel.Country,
	})
	s.state.Store(next)

	logger.Debug("Published state %s (primary: %d years, secondary: %d years)",
		next.ID(), len(primary), len(secondary))
	return next, nil
}

// Validate evaluates the current state, publishes the verdict and reports a
// failure to the sink. Validation never fails; it only returns a verdict.
func (s *Session) Validate(ctx context.Context) (bool, string) {
	s.sink.Clear()

	current := s.state.Load()
	valid, reason := Validate(current)
	verdict := current.WithVerdict(valid, reason)
	s.state.Store(verdict)

	if !valid {
		logger.Info("Analysis %s invalid: %s", verdict.ID(), reason)
		s.sink.Display(Message(reason))
	}

	if s.recorder != nil && verdict.ID() != "" {
		if err := s.recorder.Record(ctx, verdict); err != nil {
			logger.Warn("Failed to archive analysis %s: %v", verdict.ID(), err)
		}
	}

	return valid, reason
}

// Apply recalculates and validates in one step and returns the published state.
func (s *Session) Apply(ctx context.Context, sel Selection) (*models.State, error) {
	if _, err := s.Recalculate(ctx, sel); err != nil {
		return nil, err
	}
	s.Validate(ctx)
	return s.Current(), nil
}

// cycle runs one build, fetch and parse round.
func (s *Session) cycle(ctx context.Context, country catalog.CountrySelector, indicator catalog.IndicatorSelector, startYear, endYear int) (models.Series, error) {
	spec := s.builder.Build(country, indicator, startYear, endYear)
	logger.Debug("Fetching %s", spec.URL)

	body, err := s.fetcher.Fetch(ctx, spec)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Fetch of %s abandoned by caller: %v", catalog.IndicatorAt(indicator).Code, ctx.Err())
			return nil, fmt.Errorf("fetch of indicator %s cancelled: %w", catalog.IndicatorAt(indicator).Code, ctx.Err())
		}
		s.fatal(err)
		return nil, fmt.Errorf("failed to fetch indicator %s: %w", catalog.IndicatorAt(indicator).Code, err)
	}

	series, err := worldbank.Parse(body)
	if err != nil {
		logger.Error("Failed to parse response for %s: %v", catalog.IndicatorAt(indicator).Code, err)
		s.sink.Display(msgParseFailed)
		return nil, fmt.Errorf("failed to parse indicator %s: %w", catalog.IndicatorAt(indicator).Code, err)
	}

	return series, nil
}

// fatal reports an unreachable service and terminates.
func (s *Session) fatal(err error) {
	logger.Error("Cannot reach indicator service, exiting: %v", err)
	s.sink.Display(msgFetchFailed)
	s.sleep(s.fatalDelay)
	s.exit(1)
}
