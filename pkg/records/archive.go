package records

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-kit/log"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Archive is a directory of <YYYYMMDD>.json record files.
type Archive struct {
	dir    string
	logger log.Logger
}

// NewArchive opens (creating if needed) a record archive directory.
func NewArchive(dir string, logger log.Logger) (*Archive, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating archive directory %s", dir)
	}
	return &Archive{dir: dir, logger: logger}, nil
}

// Dates lists the archived record dates in ascending order. Files that do
// not carry a YYYYMMDD name are ignored.
func (a *Archive) Dates() ([]time.Time, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing archive %s", a.dir)
	}
	var dates []time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		date, err := time.Parse(DateTag, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// Get loads the archived record for a date. The second return is false when
// no usable record exists; corrupt files are skipped with a logged warning
// rather than treated as fatal.
func (a *Archive) Get(date time.Time) (map[string]interface{}, bool) {
	path := a.path(date)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		a.logger.Log("msg", "skipping unreadable record file", "path", path, "err", err)
		return nil, false
	}
	if len(record) == 0 {
		return nil, false
	}
	return record, true
}

// Put writes a record file for a date. Empty records are refused so a failed
// fetch never shadows a later successful one.
func (a *Archive) Put(date time.Time, record map[string]interface{}) error {
	if len(record) == 0 {
		return errors.Errorf("refusing to archive empty record for %s", date.Format(DateTag))
	}
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}
	path := a.path(date)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing record file %s", path)
	}
	return nil
}

func (a *Archive) path(date time.Time) string {
	return filepath.Join(a.dir, date.Format(DateTag)+".json")
}
