package app

import (
	"context"
	"strconv"
	"time"

	"github.com/mulengadev/lendstack/internal/config"
)

type SweepHandler interface {
	Execute(ctx context.Context) error
}

// SweepProcess periodically re-polls the gateway for transactions stuck in
// PENDING whose callback never arrived.
type SweepProcess struct {
	handler SweepHandler
	config  config.Process
}

func NewSweepProcess(h SweepHandler, cfg config.Process) *SweepProcess {
	return &SweepProcess{handler: h, config: cfg}
}

// Run runs the sweep on a fixed interval until the context is cancelled.
func (p *SweepProcess) Run(ctx context.Context) error {
	interval, err := strconv.Atoi(p.config.SweepInterval)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.handler.Execute(ctx)
		}
	}
}
