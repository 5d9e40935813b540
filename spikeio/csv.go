package spikeio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/uyouii/zeta-algorithms/common"
	"github.com/uyouii/zeta-algorithms/model"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	// Whether the first row is a header. A first row that does not parse as
	// numbers is treated as a header either way.
	HasHeader bool
	Delimiter rune // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		Delimiter: ',',
	}
}

// LoadSpikeTimes loads a spike-time vector (seconds) from the first column
// of a CSV file.
func LoadSpikeTimes(filename string, opts *CSVOptions) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadSpikeTimesFromReader(file, opts)
}

// LoadSpikeTimesFromReader loads a spike-time vector from an io.Reader.
func LoadSpikeTimesFromReader(r io.Reader, opts *CSVOptions) ([]float64, error) {
	rows, err := readRows(r, opts)
	if err != nil {
		return nil, err
	}

	spikes := make([]float64, 0, len(rows))
	for _, row := range rows {
		spikes = append(spikes, row[0])
	}
	return spikes, nil
}

// LoadEventTable loads an event table from a CSV file: one row per trial
// (onset, optional offset) or the transposed layout. The orientation is
// resolved by zeta.EventOnsets.
func LoadEventTable(filename string, opts *CSVOptions) (model.EventTimes, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadEventTableFromReader(file, opts)
}

// LoadEventTableFromReader loads an event table from an io.Reader.
func LoadEventTableFromReader(r io.Reader, opts *CSVOptions) (model.EventTimes, error) {
	rows, err := readRows(r, opts)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrorNoEvents
	}
	return model.EventTimes(rows), nil
}

func readRows(r io.Reader, opts *CSVOptions) ([][]float64, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	var rows [][]float64
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, err := parseRecord(record)
		if line == 1 && (opts.HasHeader || err != nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	return rows, nil
}

// trailing empty fields are dropped
func parseRecord(record []string) ([]float64, error) {
	end := len(record)
	for end > 0 && strings.TrimSpace(record[end-1]) == "" {
		end--
	}

	row := make([]float64, 0, end)
	for _, field := range record[:end] {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.Trim(field, "\"")), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", common.ErrorInvalidValue, field)
		}
		row = append(row, v)
	}
	return row, nil
}
