package ics

import (
	"context"
	"errors"

	appLog "dayos/internal/log"
	"dayos/internal/model"
)

// SourceMeetings is the expanded meeting set of one feed.
type SourceMeetings struct {
	Source   Source
	Meetings []model.Meeting
}

// LoadMeetings runs fetch, parse and expand for every source. A source that
// fails to fetch or parse is left out of the result so its previously
// imported meetings stay untouched; the joined error reports it.
func LoadMeetings(ctx context.Context, f *Fetcher, sources []Source, cfg ExpandConfig) ([]SourceMeetings, error) {
	results, errs := f.FetchAll(ctx, sources)

	out := make([]SourceMeetings, 0, len(results))
	for _, res := range results {
		events, err := ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		expanded, err := ExpandMeetings(events, cfg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		appLog.Info("ics meetings loaded", "id", res.Source.ID, "meetings", len(expanded.Meetings), "from_cache", res.FromCache)
		out = append(out, SourceMeetings{Source: res.Source, Meetings: expanded.Meetings})
	}

	return out, errors.Join(errs...)
}
