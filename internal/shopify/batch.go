package shopify

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/maltedev/shopify-product-importer/internal/models"
)

const DefaultBatchSize = 50

var (
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
	ErrNoRows           = errors.New("no import rows to write")
	ErrHeaderMismatch   = errors.New("batch header does not match import columns")
)

// SerializationError reports a batch that could not be encoded. Other batches
// of the same run are unaffected.
type SerializationError struct {
	Batch int
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize batch %d: %v", e.Batch, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// WriteBatches splits rows into contiguous chunks of at most batchSize rows and
// encodes each chunk as a CSV file with the Columns header. An empty row set
// yields no batches. A chunk that fails to encode is left out and reported in
// the returned error; the remaining batches keep their index.
func WriteBatches(rows []models.ImportRow, batchSize int) ([]models.Batch, error) {
	if batchSize < 1 {
		return nil, ErrInvalidBatchSize
	}

	var (
		batches []models.Batch
		errs    []error
	)
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		index := start/batchSize + 1
		data, err := encodeRows(rows[start:end])
		if err != nil {
			errs = append(errs, &SerializationError{Batch: index, Err: err})
			continue
		}

		batches = append(batches, models.Batch{
			Index:    index,
			Label:    strconv.Itoa(index),
			Start:    start + 1,
			End:      end,
			Rows:     end - start,
			Filename: BatchFilename(index),
			Data:     data,
		})
	}

	return batches, errors.Join(errs...)
}

func BatchFilename(index int) string {
	return fmt.Sprintf("shopify_products_batch_%d.csv", index)
}

// DisplayName is the user facing download label, e.g. "Batch 2 (rows 51-100)".
func DisplayName(b models.Batch) string {
	return fmt.Sprintf("Batch %s (rows %d-%d)", b.Label, b.Start, b.End)
}

func encodeRows(rows []models.ImportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(Record(row)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ReadBatch decodes a CSV file produced by WriteBatches.
func ReadBatch(data []byte) ([]models.ImportRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(Columns)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrHeaderMismatch
	}

	for i, name := range records[0] {
		if name != Columns[i] {
			return nil, ErrHeaderMismatch
		}
	}

	rows := make([]models.ImportRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := fromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}
