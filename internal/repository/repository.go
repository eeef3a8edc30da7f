package repository

import (
	"context"

	"github.com/TooLazyToCreate/student-directory/internal/model"
)

/* Обе таблицы для сервиса только на чтение:
 * пользователи заводятся отдельно, студенты тоже. */

type UserRepository interface {
	// GetByEmail returns sql.ErrNoRows (wrapped) when no user has the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type StudentRepository interface {
	List(ctx context.Context) ([]model.Student, error)
}
