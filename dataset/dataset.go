package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
	"github.com/YuminosukeSato/icaprobe/pkg/log"
)

// Reasons carried by the ConfigurationErrors of this package.
const (
	ReasonNoLabelColumn   = "no label column found"
	ReasonNoFeatureColumn = "no feature column found"
	ReasonDuplicateLabel  = "duplicate label column"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dataset is a parsed CSV table: a header and rectangular string records.
type Dataset struct {
	Header  []string
	Records [][]string
}

// NumRows returns the number of data rows (header excluded).
func (d *Dataset) NumRows() int { return len(d.Records) }

// ColumnIndex returns the position of name in the header, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, h := range d.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// FeatureMatrix holds the numeric columns left after removing labels,
// in dataset column order.
type FeatureMatrix struct {
	Columns []string
	Data    *mat.Dense
}

// Labels holds the raw label cells, one row per data row.
// Vector is set only when there is exactly one label column.
type Labels struct {
	Columns []string
	Matrix  [][]string
	Vector  []string
}

// Parse reads comma separated text whose first row is the header.
// raw is not modified.
func Parse(raw []byte) (*Dataset, error) {
	body := bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.NewDatasetError(0, "", "dataset is empty")
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, parseError(0, err)
	}
	header = append([]string(nil), header...)
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, errors.NewDatasetError(0, "", "header column "+strconv.Itoa(i+1)+" has no name")
		}
		if _, dup := seen[h]; dup {
			return nil, errors.NewDatasetError(0, h, "duplicate column name")
		}
		seen[h] = struct{}{}
		header[i] = h
	}

	var records [][]string
	for row := 1; ; row++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(row, err)
		}
		if len(rec) != len(header) {
			return nil, errors.NewDatasetError(row, "",
				"expected "+strconv.Itoa(len(header))+" fields, got "+strconv.Itoa(len(rec)))
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, errors.NewDatasetError(0, "", "dataset has a header but no data rows")
	}

	return &Dataset{Header: header, Records: records}, nil
}

func parseError(row int, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return errors.NewDatasetError(row, "", pe.Err.Error())
	}
	return errors.NewDatasetError(row, "", err.Error())
}

// Split separates the dataset into features and labels. An empty labelColumns
// selects the last column.
func (d *Dataset) Split(labelColumns []string) (*FeatureMatrix, *Labels, error) {
	if len(labelColumns) == 0 {
		labelColumns = []string{d.Header[len(d.Header)-1]}
	}

	isLabel := make(map[int]bool, len(labelColumns))
	labelIdx := make([]int, 0, len(labelColumns))
	for _, name := range labelColumns {
		idx := d.ColumnIndex(name)
		if idx < 0 {
			return nil, nil, errors.NewConfigurationError(ReasonNoLabelColumn,
				"The column '%s' does not exists in the dataset.", name)
		}
		if isLabel[idx] {
			return nil, nil, errors.NewConfigurationError(ReasonDuplicateLabel,
				"The column '%s' is listed more than once in label_columns.", name)
		}
		isLabel[idx] = true
		labelIdx = append(labelIdx, idx)
	}

	featureIdx := make([]int, 0, len(d.Header)-len(labelIdx))
	featureCols := make([]string, 0, cap(featureIdx))
	for i, h := range d.Header {
		if !isLabel[i] {
			featureIdx = append(featureIdx, i)
			featureCols = append(featureCols, h)
		}
	}
	if len(featureIdx) == 0 {
		return nil, nil, errors.NewConfigurationError(ReasonNoFeatureColumn,
			"No feature column remains after removing the label columns %v.", labelColumns)
	}

	n := d.NumRows()
	data := mat.NewDense(n, len(featureIdx), nil)
	labels := &Labels{Matrix: make([][]string, n)}
	for _, idx := range labelIdx {
		labels.Columns = append(labels.Columns, d.Header[idx])
	}

	for i, rec := range d.Records {
		for j, idx := range featureIdx {
			cell := strings.TrimSpace(rec[idx])
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, errors.NewDatasetError(i+1, d.Header[idx],
					"cannot parse "+strconv.Quote(rec[idx])+" as a number")
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, errors.NewDatasetError(i+1, d.Header[idx], "missing or non-finite value")
			}
			data.Set(i, j, v)
		}
		row := make([]string, len(labelIdx))
		for j, idx := range labelIdx {
			row[j] = rec[idx]
		}
		labels.Matrix[i] = row
	}

	if len(labelIdx) == 1 {
		labels.Vector = make([]string, n)
		for i, row := range labels.Matrix {
			labels.Vector[i] = row[0]
		}
	}

	return &FeatureMatrix{Columns: featureCols, Data: data}, labels, nil
}

// Load parses raw and splits it into features and labels.
func Load(raw []byte, labelColumns []string) (*FeatureMatrix, *Labels, error) {
	ds, err := Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	features, labels, err := ds.Split(labelColumns)
	if err != nil {
		return nil, nil, err
	}

	rows, cols := features.Data.Dims()
	log.GetLoggerWithName("dataset").Debug("dataset loaded",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.TargetsKey, len(labels.Columns),
	)
	return features, labels, nil
}
