package sweeper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// SweeperPort is the interface driving adapters use to trigger a sweep.
type SweeperPort interface {
	Run(ctx context.Context) (*Result, error)
}

// sweeperAdapter wraps a ServiceContainer for type-safe calls to the
// sweeper service.
type sweeperAdapter struct {
	container mono.ServiceContainer
}

// NewSweeperAdapter creates an adapter for the sweeper services.
func NewSweeperAdapter(container mono.ServiceContainer) SweeperPort {
	if container == nil {
		panic("sweeper adapter requires non-nil ServiceContainer")
	}
	return &sweeperAdapter{container: container}
}

// Run triggers one archival sweep.
func (a *sweeperAdapter) Run(ctx context.Context) (*Result, error) {
	req := SweepRequest{}
	var resp Result
	if err := helper.CallRequestReplyService(
		ctx, a.container, "run",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("run service call failed: %w", err)
	}
	return &resp, nil
}
