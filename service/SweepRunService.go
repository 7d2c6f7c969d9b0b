package service

import (
	"context"

	"github.com/research-marketplace/account-deletion-service/entity"
	"github.com/research-marketplace/account-deletion-service/repository"
	"github.com/research-marketplace/account-deletion-service/view"
)

type SweepRunService interface {
	GetLatestSweepRuns(ctx context.Context, limit int) (*view.SweepRuns, error)
}

func NewSweepRunService(sweepRunRepo repository.DeletionSweepRunRepository) SweepRunService {
	return &sweepRunServiceImpl{sweepRunRepo: sweepRunRepo}
}

type sweepRunServiceImpl struct {
	sweepRunRepo repository.DeletionSweepRunRepository
}

func (s sweepRunServiceImpl) GetLatestSweepRuns(ctx context.Context, limit int) (*view.SweepRuns, error) {
	ents, err := s.sweepRunRepo.GetLatestSweepRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	result := &view.SweepRuns{Runs: make([]view.SweepRun, 0, len(ents))}
	for _, ent := range ents {
		result.Runs = append(result.Runs, entity.MakeSweepRunView(ent))
	}
	return result, nil
}
