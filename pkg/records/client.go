// Package records fetches dated JSON records from a remote history API and
// archives them as local JSON files so repeat lookups never touch the
// network.
package records

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kit/log"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// DateTag is the YYYYMMDD layout record files and API paths are keyed by.
const DateTag = "20060102"

// Config holds the remote endpoint settings.
type Config struct {
	BaseURL  string
	APIKey   string
	Location string
	Timeout  time.Duration
}

// Client fetches one day-record at a time from a history API laid out as
// <base>/api/<key>/history_<YYYYMMDD>/q/<location>.json.
type Client struct {
	config Config
	http   *http.Client
	logger log.Logger
}

// NewClient builds a Client. A nil logger discards log output.
func NewClient(config Config, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// History fetches the record for one date. The returned tree is the decoded
// JSON document; an empty document is an error.
func (c *Client) History(ctx context.Context, date time.Time) (map[string]interface{}, error) {
	tag := date.Format(DateTag)
	url := fmt.Sprintf("%s/api/%s/history_%s/q/%s.json", c.config.BaseURL, c.config.APIKey, tag, c.config.Location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building history request")
	}
	c.logger.Log("msg", "fetching history record", "date", tag)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching record for %s", tag)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("history request for %s failed with status %d", tag, resp.StatusCode)
	}

	var record map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, errors.Wrapf(err, "decoding record for %s", tag)
	}
	if len(record) == 0 {
		return nil, errors.Errorf("empty record for %s", tag)
	}
	return record, nil
}
