package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"bybitsnap/pkg/snapshot"
	"bybitsnap/pkg/storage"
)

const (
	csvPath      = "analytics/daily_summary.csv"
	markdownPath = "analytics/README.md"
)

// DayPair joins the two snapshots of one local date. Review may be nil;
// a date with no forecast produces no row at all.
type DayPair struct {
	Date     string
	Forecast *snapshot.Snapshot
	Review   *snapshot.Snapshot
}

// Aggregator scans the snapshot directory and rebuilds the summary
// artifacts as full-file overwrites.
type Aggregator struct {
	store  *storage.Gateway
	logger *log.Logger
}

// Option configures a new Aggregator.
type Option func(*Aggregator)

// WithLogger injects a custom logger (defaults to log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New constructs an Aggregator over the given store.
func New(store *storage.Gateway, opts ...Option) *Aggregator {
	a := &Aggregator{store: store, logger: log.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run loads every stored snapshot, pairs forecast/review per date and
// writes the CSV and Markdown summaries back through the store.
func (a *Aggregator) Run(ctx context.Context) error {
	pairs, err := a.collect(ctx)
	if err != nil {
		return err
	}
	a.logger.Printf("aggregate: %d dates with at least a forecast", len(pairs))

	csvBody, err := RenderCSV(pairs)
	if err != nil {
		return err
	}
	if err := a.store.Write(ctx, csvPath, []byte(csvBody), "build "+csvPath); err != nil {
		return err
	}
	md := RenderMarkdown(pairs, a.store.Dir())
	if err := a.store.Write(ctx, markdownPath, []byte(md), "build "+markdownPath); err != nil {
		return err
	}
	return nil
}

// collect lists the snapshot directory and groups parsed files by date.
func (a *Aggregator) collect(ctx context.Context) ([]DayPair, error) {
	dir := a.store.Dir()
	names, err := a.store.List(ctx, dir)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("aggregate: list %s: %w", dir, err)
	}

	byDate := map[string]*DayPair{}
	for _, name := range names {
		date, mode, ok := parseName(name)
		if !ok {
			continue
		}
		var snap snapshot.Snapshot
		if err := a.store.ReadJSON(ctx, dir+"/"+name, &snap); err != nil {
			a.logger.Printf("aggregate: skip %s: %v", name, err)
			continue
		}
		pair := byDate[date]
		if pair == nil {
			pair = &DayPair{Date: date}
			byDate[date] = pair
		}
		switch mode {
		case snapshot.ModeForecast:
			pair.Forecast = &snap
		case snapshot.ModeReview:
			pair.Review = &snap
		}
	}

	out := make([]DayPair, 0, len(byDate))
	for _, pair := range byDate {
		if pair.Forecast == nil {
			continue
		}
		out = append(out, *pair)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// parseName splits "YYYY-MM-DD_mode.json" into its parts.
func parseName(name string) (date string, mode snapshot.Mode, ok bool) {
	if !strings.HasSuffix(name, ".json") {
		return "", "", false
	}
	stem := strings.TrimSuffix(name, ".json")
	idx := strings.Index(stem, "_")
	if idx <= 0 {
		return "", "", false
	}
	date, rest := stem[:idx], stem[idx+1:]
	switch {
	case strings.Contains(rest, string(snapshot.ModeForecast)):
		return date, snapshot.ModeForecast, true
	case strings.Contains(rest, string(snapshot.ModeReview)):
		return date, snapshot.ModeReview, true
	}
	return "", "", false
}
