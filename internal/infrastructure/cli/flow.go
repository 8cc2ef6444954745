package cli

import (
	"context"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/taskforce/pkg/flow"
)

// newController builds the request flow controller the one-shot commands drive.
var newController = func() (*flow.Controller, error) {
	return wiring.BuildController(appState.cfg, appState.logger)
}

// settle turns a recorded request failure into an error for the caller.
func settle(snap flow.Snapshot) (flow.Snapshot, error) {
	if snap.Error != "" {
		return snap, &RequestError{Msg: snap.Error}
	}
	return snap, nil
}

func fetchSubtasks(ctx context.Context, ctrl *flow.Controller, description string) (flow.Snapshot, error) {
	if err := ctrl.FetchSubtasks(ctx, description); err != nil {
		return flow.Snapshot{}, err
	}
	return settle(ctrl.Snapshot())
}

func fetchStructure(ctx context.Context, ctrl *flow.Controller) (flow.Snapshot, error) {
	if err := ctrl.FetchStructure(ctx); err != nil {
		return flow.Snapshot{}, err
	}
	return settle(ctrl.Snapshot())
}
