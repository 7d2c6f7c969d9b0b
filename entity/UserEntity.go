package entity

import (
	"time"

	"github.com/research-marketplace/account-deletion-service/view"
)

type UserEntity struct {
	tableName struct{} `pg:"users, alias:users"`

	Id         string    `pg:"id, pk, type:varchar"`
	Email      string    `pg:"email, type:varchar"`
	Name       string    `pg:"name, type:varchar"`
	Role       string    `pg:"role, type:varchar"`
	Department string    `pg:"department, type:varchar"`
	CreatedAt  time.Time `pg:"created_at, type:timestamp without time zone"`
}

func MakeUserSnapshot(ent *UserEntity) view.UserSnapshot {
	return view.UserSnapshot{
		Id:         ent.Id,
		Email:      ent.Email,
		Name:       ent.Name,
		Role:       view.UserRole(ent.Role),
		Department: ent.Department,
		CreatedAt:  ent.CreatedAt,
	}
}
