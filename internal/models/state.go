package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rewired-gh/countrystats/internal/catalog"
)

// Reader is the read-only view rendering collaborators consume. None of its
// methods mutate state.
type Reader interface {
	Country() catalog.CountrySelector
	Indicator() catalog.IndicatorSelector
	StartYear() int
	EndYear() int
	Primary() Series
	Secondary() Series
	Valid() bool
}

// State is one analysis: the selectors that were requested, the series fetched
// for them and the validity verdict. A State is never modified once built;
// recalculation and validation produce new instances.
type State struct {
	id        string
	country   catalog.CountrySelector
	indicator catalog.IndicatorSelector
	startYear int
	endYear   int
	primary   Series
	secondary Series
	valid     bool
	reason    string
	fetchedAt time.Time

	countryChanged bool
}

// StateParams carries the fields of a freshly fetched State.
type StateParams struct {
	ID        string
	Country   catalog.CountrySelector
	Indicator catalog.IndicatorSelector
	StartYear int
	EndYear   int
	Primary   Series
	Secondary Series
	FetchedAt time.Time

	// CountryChanged marks a State whose country differs from the one it replaced.
	CountryChanged bool
}

// NewState builds an unvalidated State. The secondary series is dropped when
// the indicator is primary-only.
func NewState(p StateParams) *State {
	secondary := p.Secondary.Clone()
	if p.Indicator.IsPrimary() {
		secondary = NewSeries()
	}
	return &State{
		id:        p.ID,
		country:   p.Country,
		indicator: p.Indicator,
		startYear: p.StartYear,
		endYear:   p.EndYear,
		primary:   p.Primary.Clone(),
		secondary: secondary,
		fetchedAt: p.FetchedAt,

		countryChanged: p.CountryChanged,
	}
}

// DefaultState is the startup state: first country, primary indicator only,
// both years at the first selectable year, no data.
func DefaultState() *State {
	year := catalog.DefaultYear()
	return NewState(StateParams{
		Country:   0,
		Indicator: catalog.PrimaryIndicator,
		StartYear: year,
		EndYear:   year,
	})
}

// WithVerdict returns a copy of s carrying the given verdict.
func (s *State) WithVerdict(valid bool, reason string) *State {
	out := *s
	out.valid = valid
	out.reason = reason
	return &out
}

func (s *State) ID() string                           { return s.id }
func (s *State) Country() catalog.CountrySelector     { return s.country }
func (s *State) Indicator() catalog.IndicatorSelector { return s.indicator }
func (s *State) StartYear() int                       { return s.startYear }
func (s *State) EndYear() int                         { return s.endYear }
func (s *State) Valid() bool                          { return s.valid }
func (s *State) Reason() string                       { return s.reason }
func (s *State) FetchedAt() time.Time                 { return s.fetchedAt }
func (s *State) CountryChanged() bool                 { return s.countryChanged }

// Primary returns a copy of the primary series.
func (s *State) Primary() Series { return s.primary.Clone() }

// Secondary returns a copy of the secondary series; empty when primary-only.
func (s *State) Secondary() Series { return s.secondary.Clone() }

// Validate checks that the state references catalog entries and carries an ID.
// It says nothing about data completeness; that is the analysis verdict.
func (s *State) Validate() error {
	if s.id == "" {
		return errors.New("state ID must not be empty")
	}
	if !catalog.ValidCountry(s.country) {
		return errors.New("country selector out of range")
	}
	if !catalog.ValidIndicator(s.indicator) {
		return errors.New("indicator selector out of range")
	}
	if s.fetchedAt.After(time.Now()) {
		return errors.New("fetched at must not be in the future")
	}
	return nil
}

type stateJSON struct {
	ID            string  `json:"id"`
	CountryCode   string  `json:"country"`
	CountryName   string  `json:"country_name"`
	IndicatorCode string  `json:"indicator"`
	IndicatorName string  `json:"indicator_name"`
	StartYear     int     `json:"start_year"`
	EndYear       int     `json:"end_year"`
	Primary       Series  `json:"primary"`
	Secondary     Series  `json:"secondary"`
	Valid         bool    `json:"valid"`
	Reason        string  `json:"reason,omitempty"`
	FetchedAt     *string `json:"fetched_at,omitempty"`
}

// MarshalJSON renders the state with catalog codes instead of raw selectors.
func (s *State) MarshalJSON() ([]byte, error) {
	country := catalog.CountryAt(s.country)
	indicator := catalog.IndicatorAt(s.indicator)
	out := stateJSON{
		ID:            s.id,
		CountryCode:   country.Code,
		CountryName:   country.Name,
		IndicatorCode: indicator.Code,
		IndicatorName: indicator.Name,
		StartYear:     s.startYear,
		EndYear:       s.endYear,
		Primary:       s.primary,
		Secondary:     s.secondary,
		Valid:         s.valid,
		Reason:        s.reason,
	}
	if !s.fetchedAt.IsZero() {
		ts := s.fetchedAt.UTC().Format(time.RFC3339)
		out.FetchedAt = &ts
	}
	return json.Marshal(out)
}
