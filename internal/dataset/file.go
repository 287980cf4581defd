package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// DefaultPath is where the dataset lives relative to the working directory.
const DefaultPath = "data/data.json"

var (
	// ErrInvalidDataset is returned when the file is not a dataset document at all.
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrInvalidRecord marks a single city or participant that fails validation.
	// Such records are skipped during aggregation; the rest of the file is used.
	ErrInvalidRecord = errors.New("invalid record")

	validate = validator.New()
)

// Load reads and decodes the dataset file.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	return Decode(raw)
}

// Decode parses a dataset document. Only malformed JSON fails the whole
// document; individual records are checked with City.Validate and
// Participant.Validate where they are used.
func Decode(raw []byte) (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	return &d, nil
}

// Validate checks the city's fields and coordinate range.
func (c City) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: city %s: %v", ErrInvalidRecord, c, err)
	}
	if !c.Coordinates.Valid() {
		return fmt.Errorf("%w: city %s has coordinates out of range: %v", ErrInvalidRecord, c, c.Coordinates)
	}
	return nil
}

// Validate checks the participant's fields and inline coordinate range.
func (p Participant) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: participant %q: %v", ErrInvalidRecord, p.Name, err)
	}
	if p.Coordinates != nil && !p.Coordinates.Valid() {
		return fmt.Errorf("%w: participant %q has coordinates out of range: %v", ErrInvalidRecord, p.Name, *p.Coordinates)
	}
	return nil
}

// Save overwrites the dataset file with two-space indented JSON.
// There is no locking and no atomic replace: the last writer wins.
func Save(path string, d *Dataset) error {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset %s: %w", path, err)
	}
	return nil
}
