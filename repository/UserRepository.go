package repository

import (
	"context"
	"errors"

	"github.com/go-pg/pg/v10"
	"github.com/research-marketplace/account-deletion-service/db"
	"github.com/research-marketplace/account-deletion-service/entity"
)

type UserRepository interface {
	GetUserById(ctx context.Context, userId string) (*entity.UserEntity, error)
	CreateUser(ctx context.Context, user *entity.UserEntity) error
	UpdateUser(ctx context.Context, user *entity.UserEntity) error
	DeleteUser(ctx context.Context, userId string) error
}

func NewUserRepository(cp db.ConnectionProvider) UserRepository {
	return &userRepositoryImpl{cp: cp}
}

type userRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (u userRepositoryImpl) GetUserById(ctx context.Context, userId string) (*entity.UserEntity, error) {
	user := new(entity.UserEntity)
	err := u.cp.GetConnection().ModelContext(ctx, user).
		Where("id = ?", userId).
		First()
	if err != nil {
		if errors.Is(err, pg.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (u userRepositoryImpl) CreateUser(ctx context.Context, user *entity.UserEntity) error {
	_, err := u.cp.GetConnection().ModelContext(ctx, user).Insert()
	return err
}

func (u userRepositoryImpl) UpdateUser(ctx context.Context, user *entity.UserEntity) error {
	_, err := u.cp.GetConnection().ModelContext(ctx, user).WherePK().Update()
	return err
}

func (u userRepositoryImpl) DeleteUser(ctx context.Context, userId string) error {
	_, err := u.cp.GetConnection().ModelContext(ctx, &entity.UserEntity{}).
		Where("id = ?", userId).
		Delete()
	return err
}
