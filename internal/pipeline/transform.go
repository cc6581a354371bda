package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/commodity-panel-etl/internal/align"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
	"github.com/couchcryptid/commodity-panel-etl/internal/features"
)

// PanelTransformer implements Transformer with the aligner and the feature
// deriver.
type PanelTransformer struct {
	aligner *align.Aligner
	logger  *slog.Logger
}

// NewTransformer creates a PanelTransformer.
func NewTransformer(aligner *align.Aligner, logger *slog.Logger) *PanelTransformer {
	return &PanelTransformer{aligner: aligner, logger: logger}
}

func (t *PanelTransformer) Transform(ctx context.Context, src Sources) (domain.MasterPanel, error) {
	if err := ctx.Err(); err != nil {
		return domain.MasterPanel{}, err
	}

	aligned, err := t.aligner.Align(src.Prices, src.Weather, src.SupplyDemand)
	if err != nil {
		return domain.MasterPanel{}, err
	}

	panel := features.Build(aligned, t.aligner.Period())
	if panel.Dropped > 0 {
		t.logger.Info("incomplete periods dropped",
			"aligned", aligned.Len(),
			"dropped", panel.Dropped,
			"kept", panel.Frame.Len(),
		)
	}
	return panel, nil
}
