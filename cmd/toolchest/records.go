package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/go-kit/log"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LClos/data-toolchest/pkg/records"
)

var (
	recordsCacheDir string
	recordsBaseURL  string
	recordsAPIKey   string
	recordsLocation string
	recordsDate     string
	recordsDays     int
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Fetch and archive dated records from a remote service",
}

var recordsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a single day-record, preferring the local archive",
	RunE:  runRecordsFetch,
}

var recordsBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Fill archive gaps walking backwards from the oldest cached day",
	RunE:  runRecordsBackfill,
}

func init() {
	recordsCmd.PersistentFlags().StringVar(&recordsCacheDir, "cache-dir", "records-cache", "directory holding archived day-records")
	recordsCmd.PersistentFlags().StringVar(&recordsBaseURL, "base-url", "", "base URL of the record service (required)")
	recordsCmd.PersistentFlags().StringVar(&recordsAPIKey, "api-key", "", "API key for the record service (required)")
	recordsCmd.PersistentFlags().StringVar(&recordsLocation, "location", "", "location qualifier for requests (required)")
	_ = recordsCmd.MarkPersistentFlagRequired("base-url")
	_ = recordsCmd.MarkPersistentFlagRequired("api-key")
	_ = recordsCmd.MarkPersistentFlagRequired("location")

	recordsFetchCmd.Flags().StringVar(&recordsDate, "date", "", "day to fetch, formatted YYYYMMDD (default today)")
	recordsBackfillCmd.Flags().IntVar(&recordsDays, "days", 30, "maximum number of days to walk back")

	recordsCmd.AddCommand(recordsFetchCmd)
	recordsCmd.AddCommand(recordsBackfillCmd)
	rootCmd.AddCommand(recordsCmd)
}

func newStore() (*records.Store, error) {
	logger := log.NewLogfmtLogger(os.Stderr)
	client := records.NewClient(records.Config{
		BaseURL:  recordsBaseURL,
		APIKey:   recordsAPIKey,
		Location: recordsLocation,
	}, logger)
	archive, err := records.NewArchive(recordsCacheDir, logger)
	if err != nil {
		return nil, err
	}
	return records.NewStore(client, archive), nil
}

func runRecordsFetch(cmd *cobra.Command, args []string) error {
	date := time.Now()
	if recordsDate != "" {
		parsed, err := time.Parse(records.DateTag, recordsDate)
		if err != nil {
			return errors.Wrapf(err, "parsing --date %q", recordsDate)
		}
		date = parsed
	}

	store, err := newStore()
	if err != nil {
		return err
	}
	record, err := store.Record(cmd.Context(), date)
	if err != nil {
		return err
	}

	rendered, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
	return nil
}

func runRecordsBackfill(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	bar := pb.StartNew(recordsDays)
	fetched, err := store.Backfill(cmd.Context(), recordsDays, func() {
		bar.Increment()
	})
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "archived %d new day-records under %s\n", fetched, recordsCacheDir)
	return nil
}
