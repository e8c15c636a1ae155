package save

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/threekingdoms/progression/internal/save"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
