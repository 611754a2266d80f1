package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gmedash/internal/cache"
)

type countingAttempt struct {
	name  string
	value int
	err   error
	calls int
}

func (a *countingAttempt) attempt() Attempt[int] {
	return Attempt[int]{Name: a.name, Fetch: func(ctx context.Context) (int, error) {
		a.calls++
		return a.value, a.err
	}}
}

func positive(v int) error {
	if v <= 0 {
		return errors.New("not positive")
	}
	return nil
}

func TestWaterfallFirstValidAttemptWins(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 13, 15, 0, 0, 0, time.UTC)}
	tiers := newTestTiers(clock, nil)
	a := &countingAttempt{name: "a", value: 1}
	b := &countingAttempt{name: "b", value: 2}

	res, err := Waterfall[int]{Key: "k", TTL: fixedTTL(time.Minute), Attempts: []Attempt[int]{a.attempt(), b.attempt()}, Validate: positive}.Run(context.Background(), tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Data != 1 || res.Source != "a" || res.Stale {
		t.Fatalf("unexpected result: %+v", res)
	}
	if b.calls != 0 {
		t.Fatalf("second attempt should not be called, got %d calls", b.calls)
	}
}

func TestWaterfallFallsThroughFailedAndInvalidAttempts(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 13, 15, 0, 0, 0, time.UTC)}
	tiers := newTestTiers(clock, nil)
	a := &countingAttempt{name: "a", err: errUpstream}
	b := &countingAttempt{name: "b", value: -5}
	c := &countingAttempt{name: "c", value: 3}

	w := Waterfall[int]{Key: "k", TTL: fixedTTL(time.Minute), Attempts: []Attempt[int]{a.attempt(), b.attempt(), c.attempt()}, Validate: positive}
	res, err := w.Run(context.Background(), tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Data != 3 || res.Source != "c" {
		t.Fatalf("expected c tagged, got %+v", res)
	}

	clock.advance(10 * time.Second)
	res, err = w.Run(context.Background(), tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != SourceCache || res.OriginalSource != "c" || res.CacheAge != 10*time.Second {
		t.Fatalf("expected fresh cache hit, got %+v", res)
	}
	if c.calls != 1 {
		t.Fatalf("fresh cache should skip providers, got %d calls", c.calls)
	}
}

func TestWaterfallServesStaleWhenAllFail(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 13, 15, 0, 0, 0, time.UTC)}
	tiers := newTestTiers(clock, nil)
	good := &countingAttempt{name: "a", value: 7}
	_, _ = Waterfall[int]{Key: "k", TTL: fixedTTL(time.Minute), Attempts: []Attempt[int]{good.attempt()}}.Run(context.Background(), tiers)

	clock.advance(2 * time.Minute)
	a := &countingAttempt{name: "a", err: errUpstream}
	b := &countingAttempt{name: "b", err: errUpstream}
	res, err := Waterfall[int]{Key: "k", TTL: fixedTTL(time.Minute), Attempts: []Attempt[int]{a.attempt(), b.attempt()}}.Run(context.Background(), tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Stale || res.Data != 7 || res.OriginalSource != "a" || res.CacheAge != 2*time.Minute {
		t.Fatalf("expected stale value, got %+v", res)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("both providers should be tried once, got %d and %d", a.calls, b.calls)
	}
}

func TestWaterfallPlaceholderWhenNothingAvailable(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 13, 15, 0, 0, 0, time.UTC)}
	tiers := newTestTiers(clock, nil)
	a := &countingAttempt{name: "a", err: errUpstream}

	res, err := Waterfall[int]{Key: "k", Attempts: []Attempt[int]{a.attempt()}, Placeholder: func() int { return 42 }}.Run(context.Background(), tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Placeholder || res.Data != 42 || res.Source != SourceNone {
		t.Fatalf("expected placeholder, got %+v", res)
	}

	_, err = Waterfall[int]{Key: "other", Attempts: []Attempt[int]{a.attempt()}}.Run(context.Background(), tiers)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestWaterfallMirrorSurvivesRestart(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 13, 15, 0, 0, 0, time.UTC)}
	mirror := cache.NewMirror(newMemRedis(), time.Hour)

	first := newTestTiers(clock, mirror)
	good := &countingAttempt{name: "a", value: 9}
	if _, err := (Waterfall[int]{Key: "k", Attempts: []Attempt[int]{good.attempt()}}).Run(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.advance(5 * time.Minute)
	restarted := newTestTiers(clock, mirror)
	bad := &countingAttempt{name: "a", err: errUpstream}
	res, err := Waterfall[int]{Key: "k", Attempts: []Attempt[int]{bad.attempt()}}.Run(context.Background(), restarted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Stale || res.Data != 9 || res.OriginalSource != "a" || res.CacheAge != 5*time.Minute {
		t.Fatalf("expected mirrored value, got %+v", res)
	}
}

func TestWaterfallArchiveTier(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 13, 15, 0, 0, 0, time.UTC)}
	tiers := newTestTiers(clock, nil)
	a := &countingAttempt{name: "a", err: errUpstream}
	var fresh int

	w := Waterfall[int]{
		Key:      "k",
		Attempts: []Attempt[int]{a.attempt()},
		Archive:  func(ctx context.Context) (int, error) { return 11, nil },
		OnFresh:  func(ctx context.Context, v int) { fresh = v },
	}
	res, err := w.Run(context.Background(), tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != SourceArchive || res.Data != 11 || !res.Stale {
		t.Fatalf("expected archive result, got %+v", res)
	}
	if fresh != 0 {
		t.Fatal("archive hits are not fresh fetches")
	}
}

func TestWaterfallSharedFetchSurvivesCancelledCaller(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 13, 15, 0, 0, 0, time.UTC)}
	tiers := newTestTiers(clock, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	slow := Attempt[int]{Name: "slow", Fetch: func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 42, nil
	}}
	w := Waterfall[int]{Key: "k", TTL: fixedTTL(time.Minute), Attempts: []Attempt[int]{slow}, Validate: positive}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	go func() { _, _ = w.Run(firstCtx, tiers) }()
	<-started

	type outcome struct {
		res Result[int]
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := w.Run(context.Background(), tiers)
		second <- outcome{res, err}
	}()
	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	close(release)

	select {
	case got := <-second:
		if got.err != nil || got.res.Data != 42 || got.res.Source != "slow" {
			t.Fatalf("unexpected result: %+v err=%v", got.res, got.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one shared fetch, got %d", n)
	}
}
