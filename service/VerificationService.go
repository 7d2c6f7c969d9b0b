package service

import (
	"context"
	"net/http"

	"github.com/research-marketplace/account-deletion-service/entity"
	"github.com/research-marketplace/account-deletion-service/exception"
	"github.com/research-marketplace/account-deletion-service/repository"
	"github.com/research-marketplace/account-deletion-service/view"
	"golang.org/x/sync/errgroup"
)

type VerificationService interface {
	VerifyUserDeletion(ctx context.Context, userId string) (*view.DeletionVerificationReport, error)
	GetDeletionStatus(ctx context.Context, userId string) (*view.DeferredDeletions, error)
}

func NewVerificationService(ownedDataRepo repository.UserOwnedDataRepository, deletionRepo repository.DeferredDeletionRepository) VerificationService {
	return &verificationServiceImpl{
		ownedDataRepo: ownedDataRepo,
		deletionRepo:  deletionRepo,
		tables:        entity.UserOwnedTables(),
	}
}

type verificationServiceImpl struct {
	ownedDataRepo repository.UserOwnedDataRepository
	deletionRepo  repository.DeferredDeletionRepository
	tables        []entity.OwnedTable
}

// VerifyUserDeletion counts rows still owned by userId in every dependent table.
// Any failed count fails the whole report so an incomplete check never reads as complete.
func (v verificationServiceImpl) VerifyUserDeletion(ctx context.Context, userId string) (*view.DeletionVerificationReport, error) {
	report := &view.DeletionVerificationReport{
		UserId:           userId,
		Tables:           make([]view.RemainingRows, len(v.tables)),
		DeletionComplete: true,
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i, table := range v.tables {
		g.Go(func() error {
			count, err := v.ownedDataRepo.CountOwnedRows(gCtx, table, userId)
			if err != nil {
				return err
			}
			report.Tables[i] = view.RemainingRows{Table: table.Name, Count: count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &exception.CustomError{
			Status:  http.StatusInternalServerError,
			Code:    exception.VerificationFailed,
			Message: exception.VerificationFailedMsg,
			Params:  map[string]interface{}{"userId": userId},
			Debug:   err.Error(),
		}
	}
	for _, remaining := range report.Tables {
		if remaining.Count > 0 {
			report.DeletionComplete = false
		}
	}
	return report, nil
}

func (v verificationServiceImpl) GetDeletionStatus(ctx context.Context, userId string) (*view.DeferredDeletions, error) {
	ents, err := v.deletionRepo.GetDeferredDeletionsByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	result := &view.DeferredDeletions{Deletions: make([]view.DeferredDeletion, 0, len(ents))}
	for _, ent := range ents {
		result.Deletions = append(result.Deletions, entity.MakeDeferredDeletionView(ent))
	}
	return result, nil
}
