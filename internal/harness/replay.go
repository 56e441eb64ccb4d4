package harness

import (
	"context"
	"log/slog"

	"acctune/internal/dataset"
	"acctune/internal/model"
)

// ReplayRunner answers evaluations from a historical dataset instead of
// compiling and running anything. Points absent from the dataset fail
// with NotInDataset; recorded errors are reproduced.
type ReplayRunner struct {
	Data *dataset.Dataset
	Log  *slog.Logger
}

func (r *ReplayRunner) Test(_ context.Context, p model.Point, _ int) model.Result {
	rec, ok := r.Data.Lookup(p)
	if !ok {
		r.Log.Error("point not in dataset", "point", p.String())
		return model.Failed(p, model.FailureNotInDataset, "")
	}
	if rec.ErrMsg != "" {
		return model.Failed(p, model.FailureDatasetError, rec.ErrMsg)
	}
	r.Log.Info("point measured", "point", p.String(), "average", rec.Time, "stdev", rec.Stdev)
	return model.Success(p, rec.Time, rec.Stdev)
}
