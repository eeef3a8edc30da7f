package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TooLazyToCreate/student-directory/internal/model"
	"go.uber.org/zap"
)

type userRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserRepository(logger *zap.Logger, db *sql.DB) UserRepository {
	return &userRepo{
		db:     db,
		logger: logger,
	}
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, email, password FROM usuarios WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

type studentRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewStudentRepository(logger *zap.Logger, db *sql.DB) StudentRepository {
	return &studentRepo{
		db:     db,
		logger: logger,
	}
}

func (r *studentRepo) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nombre, apellido, email, fecha_nacimiento FROM estudiante`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	/* Пустая таблица должна отдаваться как [], а не null */
	result := make([]model.Student, 0, 32)
	for rows.Next() {
		var (
			student   model.Student
			email     sql.NullString
			birthDate sql.NullTime
		)
		if err := rows.Scan(&student.ID, &student.Nombre, &student.Apellido, &email, &birthDate); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		if email.Valid {
			student.Email = &email.String
		}
		if birthDate.Valid {
			student.FechaNacimiento = model.NewDate(birthDate.Time)
		}
		result = append(result, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	r.logger.Debug("Students have been read", zap.Int("count", len(result)))
	return result, nil
}
