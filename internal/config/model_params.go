package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/demandcast/backend/internal/forecast"
)

// LoadModelParams reads forecast model and planning parameters from a
// YAML file. A missing file yields the defaults; a malformed file is an
// error.
func LoadModelParams(path string) (forecast.Params, error) {
	params := forecast.DefaultParams()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return params, nil
	}
	if err != nil {
		return params, fmt.Errorf("reading model params: %w", err)
	}

	if err := yaml.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("parsing model params: %w", err)
	}

	if params.SeasonalPeriod < 2 {
		return params, fmt.Errorf("seasonal_period must be at least 2, got %d", params.SeasonalPeriod)
	}
	if params.Planning.ServiceLevel <= 0 || params.Planning.ServiceLevel >= 1 {
		return params, fmt.Errorf("service_level must be in (0, 1), got %g", params.Planning.ServiceLevel)
	}
	if params.Planning.LeadTimeDays <= 0 {
		return params, fmt.Errorf("lead_time_days must be positive, got %g", params.Planning.LeadTimeDays)
	}

	return params, nil
}
