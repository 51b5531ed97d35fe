// Package runlog appends one CSV row per pipeline run.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Status values recorded for a run.
const (
	StatusOK             = "ok"
	StatusSavingsSkipped = "savings_skipped"
	StatusFailed         = "failed"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp    time.Time
	RunID        string
	Input        string
	Output       string
	Transactions int
	Savings      int
	TopN         int
	Status       string
	Details      string
}

// Header is the CSV header for the run log.
const Header = "timestamp,run_id,input,output,transactions,savings_entries,top_n,status,details"

// DefaultFile is the run log path relative to a batch root.
const DefaultFile = "logs/runs.csv"

const (
	numFields  = 9
	colTime    = 0
	colRunID   = 1
	colInput   = 2
	colOutput  = 3
	colTxns    = 4
	colSavings = 5
	colTopN    = 6
	colStatus  = 7
	colDetails = 8
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colInput] = e.Input
	row[colOutput] = e.Output
	row[colTxns] = strconv.Itoa(e.Transactions)
	row[colSavings] = strconv.Itoa(e.Savings)
	row[colTopN] = strconv.Itoa(e.TopN)
	row[colStatus] = e.Status
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}

	ints := make([]int, 3)
	for i, col := range []int{colTxns, colSavings, colTopN} {
		ints[i], err = strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
	}

	return Entry{
		Timestamp:    ts,
		RunID:        record[colRunID],
		Input:        record[colInput],
		Output:       record[colOutput],
		Transactions: ints[0],
		Savings:      ints[1],
		TopN:         ints[2],
		Status:       record[colStatus],
		Details:      record[colDetails],
	}, nil
}

// Append writes entries to path, creating the file, its directory and the header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from path, or nil if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
