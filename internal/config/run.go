package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
)

// Source kinds.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Run holds the settings of an import, merge or apply run.
type Run struct {
	// DaysGap is the most days between two terms of one enrollment
	DaysGap int `mapstructure:"daysgap" validate:"gte=0"`

	// Source selects where CRM tables come from
	Source string `mapstructure:"source" validate:"oneof=file postgres"`
	// ExtractDir holds <object>.csv extracts for the file source
	ExtractDir string `mapstructure:"extract_dir" validate:"required_if=Source file"`
	// DSN is the PostgreSQL connection string for the postgres source
	DSN string `mapstructure:"dsn" validate:"required_if=Source postgres"`

	// Reference tables of the clearinghouse import
	CollegesFile string `mapstructure:"colleges_file"`
	DegreesFile  string `mapstructure:"degrees_file"`

	OutputDir string `mapstructure:"output_dir" validate:"required"`
	Report    bool   `mapstructure:"report"`
	Metrics   bool   `mapstructure:"metrics"`
	Debug     bool   `mapstructure:"debug"`

	Fields enrollment.Fields `mapstructure:"fields"`
}

// DefaultRun returns the default run settings.
func DefaultRun() Run {
	return Run{
		DaysGap:   constants.DefaultDaysGap,
		Source:       SourceFile,
		CollegesFile: constants.DefaultCollegeList,
		DegreesFile:  constants.DefaultDegreeList,
		OutputDir:    ".",
		Debug:        true,
		Fields:       enrollment.DefaultFields(),
	}
}

// LoadRun reads run settings from v on top of the defaults.
func LoadRun(v *viper.Viper) (Run, error) {
	run := DefaultRun()
	v.SetDefault("daysgap", run.DaysGap)
	v.SetDefault("source", run.Source)
	v.SetDefault("extract_dir", run.ExtractDir)
	v.SetDefault("dsn", run.DSN)
	v.SetDefault("colleges_file", run.CollegesFile)
	v.SetDefault("degrees_file", run.DegreesFile)
	v.SetDefault("output_dir", run.OutputDir)
	v.SetDefault("report", run.Report)
	v.SetDefault("metrics", run.Metrics)
	v.SetDefault("debug", run.Debug)
	if err := v.Unmarshal(&run); err != nil {
		return Run{}, errors.NewConfigError("run", "cannot decode settings", err)
	}
	return run, nil
}

var validate = validator.New()

// Validate checks the settings.
func (r Run) Validate() error {
	if err := validate.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(fe.Field(), fe.Value(), "failed "+fe.Tag()+" check")
		}
		return errors.WrapValidation("run", err)
	}
	return nil
}
