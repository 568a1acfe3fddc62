// Package survey manages survey definitions stored as JSONB.
package survey

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gorm.io/datatypes"

	"github.com/theplant/admintools/filter"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("survey not found")
)

// EmptyDefinition is stored when no definition is given.
const EmptyDefinition = "{}"

type Survey struct {
	ID         int64          `gorm:"primaryKey" json:"id" yaml:"id"`
	Name       string         `gorm:"size:250;not null" json:"name" yaml:"name"`
	Definition datatypes.JSON `gorm:"column:survey_definition;type:jsonb" json:"surveyDefinition" yaml:"surveyDefinition"`
	LiveFrom   time.Time      `gorm:"type:timestamptz" json:"liveFrom" yaml:"liveFrom"`
	ResultsKey string         `gorm:"size:250" json:"resultsKey" yaml:"resultsKey"`
	Comments   string         `gorm:"size:1000" json:"comments" yaml:"comments"`
}

func (Survey) TableName() string {
	return "survey"
}

type surveyYAML struct {
	ID         int64     `yaml:"id"`
	Name       string    `yaml:"name"`
	Definition any       `yaml:"surveyDefinition"`
	LiveFrom   time.Time `yaml:"liveFrom"`
	ResultsKey string    `yaml:"resultsKey"`
	Comments   string    `yaml:"comments"`
}

// MarshalYAML writes the definition as a mapping rather than raw bytes.
func (s Survey) MarshalYAML() (any, error) {
	var def any
	if len(s.Definition) > 0 {
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(s.Definition, &def); err != nil {
			return nil, errors.Wrap(err, "decode survey definition")
		}
	}
	return &surveyYAML{
		ID:         s.ID,
		Name:       s.Name,
		Definition: def,
		LiveFrom:   s.LiveFrom,
		ResultsKey: s.ResultsKey,
		Comments:   s.Comments,
	}, nil
}

// Input is the add and update form. Definition is JSON text.
type Input struct {
	Name       string
	Definition string
	LiveFrom   time.Time
	ResultsKey string
	Comments   string
}

func (in *Input) Validate() error {
	if in == nil {
		return errors.Wrap(ErrInvalidInput, "missing input")
	}
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"name", in.Name, 250},
		{"results key", in.ResultsKey, 250},
		{"comments", in.Comments, 1000},
	} {
		v := strings.TrimSpace(f.value)
		if v == "" {
			return errors.Wrapf(ErrInvalidInput, "%s is required", f.name)
		}
		if len(v) > f.max {
			return errors.Wrapf(ErrInvalidInput, "%s is longer than %d characters", f.name, f.max)
		}
	}
	if in.LiveFrom.IsZero() {
		return errors.Wrap(ErrInvalidInput, "live from is required")
	}
	if _, err := ParseDefinition(in.Definition); err != nil {
		return err
	}
	return nil
}

// ParseDefinition checks that s is a JSON object. Blank text is the empty object.
func ParseDefinition(s string) (datatypes.JSON, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return datatypes.JSON(EmptyDefinition), nil
	}
	var obj map[string]any
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(s, &obj); err != nil || obj == nil {
		return nil, errors.Wrap(ErrInvalidInput, "survey definition must be a JSON object")
	}
	return datatypes.JSON(s), nil
}

func (in *Input) survey() *Survey {
	def, _ := ParseDefinition(in.Definition)
	return &Survey{
		Name:       strings.TrimSpace(in.Name),
		Definition: def,
		LiveFrom:   in.LiveFrom,
		ResultsKey: strings.TrimSpace(in.ResultsKey),
		Comments:   strings.TrimSpace(in.Comments),
	}
}

var Schema = filter.MustSchema("survey",
	&filter.Field{Name: "id", Path: "ID", Type: filter.TypeID},
	&filter.Field{Name: "name", Path: "Name", Type: filter.TypeString},
	&filter.Field{Name: "results_key", Path: "ResultsKey", Type: filter.TypeString},
	&filter.Field{Name: "comments", Path: "Comments", Type: filter.TypeString},
	&filter.Field{Name: "live_from", Path: "LiveFrom", Type: filter.TypeTime},
)

// Filter is the typed search form of the survey table.
type Filter struct {
	Name       *filter.String `filter:"name"`
	ResultsKey *filter.String `filter:"results_key"`
	LiveFrom   *filter.Time   `filter:"live_from"`
}

var seedLiveFrom = time.Date(2023, 6, 22, 0, 0, 0, 0, time.FixedZone("PDT", -7*60*60))

// Seeds are inserted by Bootstrap into a new table.
var Seeds = []*Input{
	{Name: "Survey Doe", Definition: `{ "title": "Testing survey 2", "logoPosition": "right" }`, LiveFrom: seedLiveFrom, ResultsKey: "1", Comments: "This is a comment"},
	{Name: "Survey Smith", Definition: EmptyDefinition, LiveFrom: seedLiveFrom, ResultsKey: "1", Comments: "This is a comment"},
	{Name: "Survey Johnson", Definition: EmptyDefinition, LiveFrom: seedLiveFrom, ResultsKey: "1", Comments: "This is a comment"},
	{Name: "Survey Brown", Definition: EmptyDefinition, LiveFrom: seedLiveFrom, ResultsKey: "1", Comments: "This is a comment"},
}
