package jobs

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go_seek/internal/engine/seek"
)

// Options controls one pipeline run.
type Options struct {
	Keywords        []string `yaml:"keywords" validate:"required,min=1,dive,required"`
	Locations       []string `yaml:"locations" validate:"required,min=1,dive,required"`
	WorkTypes       []string `yaml:"work_types" validate:"dive,oneof=full_time part_time contract casual"`
	DateRange       int      `yaml:"date_range" validate:"gte=1,lte=365"`
	SortMode        string   `yaml:"sort_mode" validate:"oneof=relevance date"`
	CheckWords      []string `yaml:"check_words"`
	DownloadDetails bool     `yaml:"download_details"`
	ExtractSalary   bool     `yaml:"extract_salary"`
	CheckSimilarity bool     `yaml:"check_similarity"`
}

// DefaultOptions returns the defaults: last 31 days, newest first, details on.
func DefaultOptions() Options {
	return Options{
		DateRange:       31,
		SortMode:        "date",
		DownloadDetails: true,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks o and wraps every failure in seek.ErrInvalidOption.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("%w: %s", seek.ErrInvalidOption, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", seek.ErrInvalidOption, err)
}

// SearchParams returns the search part of o.
func (o Options) SearchParams() seek.SearchParams {
	return seek.SearchParams{
		Keywords:  o.Keywords,
		Locations: o.Locations,
		WorkTypes: o.WorkTypes,
		DateRange: o.DateRange,
		SortMode:  o.SortMode,
	}
}

// LoadOptions reads run options from a YAML file on top of DefaultOptions.
func LoadOptions(path string) (Options, error) {
	o := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("read options: %w", err)
	}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("parse options %s: %w", path, err)
	}
	return o, nil
}
