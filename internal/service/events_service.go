package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gmedash/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	eventsTTL     = time.Hour
	eventsHorizon = 180 * 24 * time.Hour
	maxEvents     = 5
)

// EarningsSource announces the next earnings date.
type EarningsSource interface {
	FetchEarningsDate(ctx context.Context, symbol string) (time.Time, error)
}

type estimatedFiling struct {
	month   time.Month
	day     int
	form    string
	quarter string
}

// The fiscal year ends near January 31; reports land roughly 60 days after
// year end and 40 days after each quarter.
var estimatedFilings = []estimatedFiling{
	{time.April, 25, "10-K", "FY"},
	{time.June, 10, "10-Q", "Q1"},
	{time.September, 10, "10-Q", "Q2"},
	{time.December, 10, "10-Q", "Q3"},
}

// EventsService lists upcoming earnings, filing deadlines and the annual
// meeting. Estimated dates are moved onto NYSE business days.
type EventsService struct {
	tracer   trace.Tracer
	tiers    *Tiers
	earnings EarningsSource
	calendar SessionCalendar
	profile  domain.CompanyProfile
}

func NewEventsService(tracer trace.Tracer, tiers *Tiers, earnings EarningsSource, calendar SessionCalendar, profile domain.CompanyProfile) *EventsService {
	return &EventsService{tracer: tracer, tiers: tiers, earnings: earnings, calendar: calendar, profile: profile}
}

// GetEvents returns at most five future events in ascending order. Cached
// lists are filtered again so an event never outlives its date.
func (s *EventsService) GetEvents(ctx context.Context) (Result[[]domain.Event], error) {
	ctx, span := s.tracer.Start(ctx, "events-service.get-events")
	defer span.End()

	res, err := Waterfall[[]domain.Event]{
		Key: "events_" + s.profile.Symbol,
		TTL: fixedTTL(eventsTTL),
		Attempts: []Attempt[[]domain.Event]{
			{Name: "events", Fetch: s.collect},
		},
	}.Run(ctx, s.tiers)
	if err != nil {
		return res, err
	}
	res.Data = upcoming(res.Data, s.tiers.now())
	return res, nil
}

func (s *EventsService) collect(ctx context.Context) ([]domain.Event, error) {
	now := s.tiers.now()
	var events []domain.Event

	if at, err := s.earnings.FetchEarningsDate(ctx, s.profile.Symbol); err == nil && at.After(now) {
		events = append(events, domain.Event{
			Title:       "Earnings Report",
			Date:        at,
			Type:        domain.EventEarnings,
			Description: s.profile.Name + " quarterly earnings announcement",
			Source:      "Yahoo Finance",
		})
	}
	events = append(events, s.estimatedFilingEvents(now)...)
	if meeting, ok := s.annualMeeting(now); ok {
		events = append(events, meeting)
	}
	return upcoming(events, now), nil
}

// nextOccurrence is month/day of this year, or of next year once passed,
// rolled onto a business day.
func (s *EventsService) nextOccurrence(now time.Time, month time.Month, day int) time.Time {
	loc := s.calendar.Location()
	local := now.In(loc)
	at := time.Date(local.Year(), month, day, 0, 0, 0, 0, loc)
	if at.Before(local) {
		at = time.Date(local.Year()+1, month, day, 0, 0, 0, 0, loc)
	}
	return s.calendar.RollForward(at)
}

func (s *EventsService) estimatedFilingEvents(now time.Time) []domain.Event {
	var out []domain.Event
	for _, est := range estimatedFilings {
		at := s.nextOccurrence(now, est.month, est.day)
		if at.After(now.Add(eventsHorizon)) {
			continue
		}
		desc := fmt.Sprintf("Quarterly Report - %s financial results", est.quarter)
		if est.form == "10-K" {
			desc = "Annual Report - Comprehensive business and financial overview"
		}
		out = append(out, domain.Event{
			Title:       fmt.Sprintf("%s Filing (%s)", est.form, est.quarter),
			Date:        at,
			Type:        domain.EventFiling,
			Description: desc,
			Source:      "Estimated",
		})
	}
	return out
}

func (s *EventsService) annualMeeting(now time.Time) (domain.Event, bool) {
	at := s.nextOccurrence(now, time.June, 15)
	if at.After(now.Add(eventsHorizon)) {
		return domain.Event{}, false
	}
	return domain.Event{
		Title:       "Annual Shareholders Meeting",
		Date:        at,
		Type:        domain.EventMeeting,
		Description: "Annual meeting of " + s.profile.Name + " shareholders (date is estimated)",
		Source:      "Estimated",
	}, true
}

func upcoming(events []domain.Event, now time.Time) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if e.Date.After(now) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	if len(out) > maxEvents {
		out = out[:maxEvents]
	}
	return out
}
