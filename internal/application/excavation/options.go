package excavation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/excavator-go/internal/domain/navigation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// Throughput bounds in blocks per second. The lower bound is exclusive.
const (
	MinThroughput     = 0.1
	MaxThroughput     = 10.0
	throughputRule    = "gt=0.1,lte=10"
	DefaultThroughput = 2.0
)

var validate = validator.New()

// Options configures one excavation request. Zero fields take the
// controller's defaults.
type Options struct {
	Throughput     float64 `validate:"gt=0.1,lte=10"`
	ProgressEvery  int     `validate:"gte=1"`
	Reach          float64 `validate:"gt=0"`
	HazardRadius   int     `validate:"gte=0,lte=3"`
	MaxVolumeCells int64   `validate:"gte=1"`
	Navigation     navigation.Options
}

// DefaultOptions returns the options used when a request leaves fields unset
func DefaultOptions() Options {
	return Options{
		Throughput:     DefaultThroughput,
		ProgressEvery:  10,
		Reach:          4.5,
		HazardRadius:   1,
		MaxVolumeCells: 32768,
		Navigation: navigation.Options{
			Tolerance:      navigation.DefaultTolerance,
			Timeout:        navigation.DefaultTimeout,
			CheckObstacles: true,
			AvoidLava:      true,
		},
	}
}

// merge fills zero fields of o from defaults
func (o Options) merge(defaults Options) Options {
	if o.Throughput == 0 {
		o.Throughput = defaults.Throughput
	}
	if o.ProgressEvery == 0 {
		o.ProgressEvery = defaults.ProgressEvery
	}
	if o.Reach == 0 {
		o.Reach = defaults.Reach
	}
	if o.HazardRadius == 0 {
		o.HazardRadius = defaults.HazardRadius
	}
	if o.MaxVolumeCells == 0 {
		o.MaxVolumeCells = defaults.MaxVolumeCells
	}
	if o.Navigation == (navigation.Options{}) {
		o.Navigation = defaults.Navigation
	}
	o.Navigation = o.Navigation.WithDefaults()
	return o
}

// Validate checks o's bounds, returning a *shared.ValidationError
func (o Options) Validate() error {
	return toValidationError(validate.Struct(o))
}

// ValidateThroughput checks a blocks-per-second rate against (0.1, 10]
func ValidateThroughput(rate float64) error {
	if err := validate.Var(rate, throughputRule); err != nil {
		return shared.NewValidationError("throughput",
			fmt.Sprintf("must be in (%.1f, %.0f], got %v", MinThroughput, MaxThroughput, rate))
	}
	return nil
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return shared.NewValidationError(fe.Field(),
			fmt.Sprintf("failed %s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value()))
	}
	return shared.NewValidationError("options", err.Error())
}
