package dataset

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
)

var (
	ErrMissingHeader  = errors.New("missing header row")
	ErrNotNumeric     = errors.New("non-numeric value in numeric column")
	ErrNoRows         = errors.New("no data rows after header")
	ErrUnknownLabel   = errors.New("label column not present in header")
	ErrRaggedCSVInput = errors.New("row has different number of fields than header")
)

// CSVOptions configures delimited file parsing.
type CSVOptions struct {
	// Comma is the field delimiter, defaulting to ','.
	Comma rune

	// LabelColumn names a single non-numeric column, e.g. a country name.
	// Values from this column become the table's row labels.
	LabelColumn string
}

// NewDefaultCSVOptions returns the default CSV parsing options.
func NewDefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		Comma: ',',
	}
}

// ReadCSV parses delimited text into a Table. A header row naming every
// column is required; all columns other than the optional label column must
// be numeric.
func ReadCSV(r io.Reader, opt *CSVOptions) (*Table, error) {
	if opt == nil {
		opt = NewDefaultCSVOptions()
	}

	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.TrimLeadingSpace = true
	// Ragged rows are reported with our own sentinel below.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read header row")
	}

	labelIdx := -1
	if opt.LabelColumn != "" {
		for i, name := range header {
			if name == opt.LabelColumn {
				labelIdx = i
				break
			}
		}
		if labelIdx == -1 {
			return nil, errors.Wrapf(ErrUnknownLabel, "%q", opt.LabelColumn)
		}
	}

	names := make([]string, 0, len(header))
	for i, name := range header {
		if i == labelIdx {
			continue
		}
		names = append(names, name)
	}

	cols := make([][]float64, len(names))
	var labels []string

	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read row %d", row)
		}
		if len(record) != len(header) {
			return nil, errors.Wrapf(ErrRaggedCSVInput, "row %d has %d fields, header has %d", row, len(record), len(header))
		}

		j := 0
		for i, cell := range record {
			if i == labelIdx {
				labels = append(labels, cell)
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(ErrNotNumeric, "column %q row %d: %q", header[i], row, cell)
			}
			cols[j] = append(cols[j], v)
			j++
		}
	}

	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil, ErrNoRows
	}

	t, err := New(names, cols)
	if err != nil {
		return nil, err
	}
	if labelIdx != -1 {
		return t.WithLabels(labels)
	}
	return t, nil
}
