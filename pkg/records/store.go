package records

import (
	"context"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/pkg/errors"
)

// Store combines a remote Client with a local Archive: reads hit the archive
// first and fall through to the network, archiving anything fetched.
type Store struct {
	client  *Client
	archive *Archive
}

// NewStore builds a Store over a client and an archive.
func NewStore(client *Client, archive *Archive) *Store {
	return &Store{client: client, archive: archive}
}

// Record returns the day-record for a date, fetching and archiving it when
// the archive has no usable copy.
func (s *Store) Record(ctx context.Context, date time.Time) (map[string]interface{}, error) {
	if record, ok := s.archive.Get(date); ok {
		return record, nil
	}
	record, err := s.client.History(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := s.archive.Put(date, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Backfill fetches up to dayLimit records going back one day at a time from
// the oldest archived date (or today when the archive is empty). hook, when
// non-nil, runs once per attempted day so callers can drive progress
// reporting. Failed days are skipped; Backfill returns the number of records
// archived.
func (s *Store) Backfill(ctx context.Context, dayLimit int, hook func()) (int, error) {
	dates, err := s.archive.Dates()
	if err != nil {
		return 0, err
	}
	oldest := time.Now()
	if len(dates) > 0 {
		oldest = dates[0]
	}

	fetched := 0
	for back := 1; back <= dayLimit; back++ {
		if err := ctx.Err(); err != nil {
			return fetched, err
		}
		date := oldest.AddDate(0, 0, -back)
		if hook != nil {
			hook()
		}
		record, err := s.client.History(ctx, date)
		if err != nil {
			s.client.logger.Log("msg", "skipping day", "date", date.Format(DateTag), "err", err)
			continue
		}
		if err := s.archive.Put(date, record); err != nil {
			return fetched, err
		}
		fetched++
	}
	return fetched, nil
}

// Observations extracts the history.observations entries from a day-record.
func Observations(record map[string]interface{}) ([]map[string]interface{}, error) {
	container := gabs.Wrap(record)
	obs := container.Search("history", "observations")
	if obs == nil {
		return nil, errors.New("record has no history.observations")
	}
	children := obs.Children()
	out := make([]map[string]interface{}, 0, len(children))
	for _, child := range children {
		if m, ok := child.Data().(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out, nil
}
