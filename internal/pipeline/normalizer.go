package pipeline

import (
	"log/slog"

	"github.com/weatherdw/nws-conditions-etl/internal/domain"
	"github.com/weatherdw/nws-conditions-etl/internal/observability"
)

// RecordNormalizer implements Normalizer using the domain parse rules.
type RecordNormalizer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewNormalizer creates a RecordNormalizer.
func NewNormalizer(logger *slog.Logger, metrics *observability.Metrics) *RecordNormalizer {
	return &RecordNormalizer{
		logger:  logger,
		metrics: metrics,
	}
}

// Normalize parses each raw record into its typed form. Records whose
// mandatory fields cannot be parsed are excluded from the batch; every drop
// is logged and counted so the loss is never silent.
func (n *RecordNormalizer) Normalize(batch []domain.RawRecord) ([]domain.TypedRecord, int) {
	records := make([]domain.TypedRecord, 0, len(batch))
	dropped := 0

	for _, raw := range batch {
		rec, err := domain.NormalizeRecord(raw)
		if err != nil {
			dropped++
			n.metrics.RecordsDropped.Inc()
			n.logger.Warn("record dropped, mandatory field unparsable",
				"location", raw.Location,
				"error", err,
			)
			continue
		}
		records = append(records, rec)
	}

	return records, dropped
}
