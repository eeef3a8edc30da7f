package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	userQuery    = `(?s)^SELECT\s+id,\s*email,\s*password\s+FROM\s+usuarios\s+WHERE\s+email\s*=\s*\$1$`
	studentQuery = `(?s)^SELECT\s+id,\s*nombre,\s*apellido,\s*email,\s*fecha_nacimiento\s+FROM\s+estudiante$`
)

var studentColumns = []string{"id", "nombre", "apellido", "email", "fecha_nacimiento"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestGetByEmail_Found(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(zap.NewNop(), db)

	mock.ExpectQuery(userQuery).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password"}).AddRow(7, "a@x.com", "$2a$hash"))

	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "$2a$hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(zap.NewNop(), db)

	mock.ExpectQuery(userQuery).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password"}))

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetByEmail_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(zap.NewNop(), db)

	mock.ExpectQuery(userQuery).WithArgs("a@x.com").WillReturnError(errors.New("db down"))

	_, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get user by email: db down")
	assert.NotErrorIs(t, err, sql.ErrNoRows)
}

func TestList_Rows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStudentRepository(zap.NewNop(), db)

	birth := time.Date(2001, time.March, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(studentQuery).WillReturnRows(sqlmock.NewRows(studentColumns).
		AddRow(1, "Ana", "Pérez", "ana@x.com", birth).
		AddRow(2, "Ana", "Pérez", "ana@x.com", birth).
		AddRow(3, "Luis", "Gómez", nil, nil))

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 3)

	/* Одинаковые данные с разными id - это разные записи */
	assert.Equal(t, int64(1), students[0].ID)
	assert.Equal(t, int64(2), students[1].ID)
	assert.Equal(t, students[0].Nombre, students[1].Nombre)
	require.NotNil(t, students[0].Email)
	assert.Equal(t, "ana@x.com", *students[0].Email)
	require.NotNil(t, students[0].FechaNacimiento)
	assert.Equal(t, "2001-03-04", students[0].FechaNacimiento.String())

	assert.Nil(t, students[2].Email)
	assert.Nil(t, students[2].FechaNacimiento)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStudentRepository(zap.NewNop(), db)

	mock.ExpectQuery(studentQuery).WillReturnRows(sqlmock.NewRows(studentColumns))

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestList_QueryError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStudentRepository(zap.NewNop(), db)

	mock.ExpectQuery(studentQuery).WillReturnError(errors.New("connection lost"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list students: connection lost")
}

func TestList_RowError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStudentRepository(zap.NewNop(), db)

	rows := sqlmock.NewRows(studentColumns).
		AddRow(1, "Ana", "Pérez", "ana@x.com", nil).
		RowError(0, errors.New("broken row"))
	mock.ExpectQuery(studentQuery).WillReturnRows(rows)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken row")
}
