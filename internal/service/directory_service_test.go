package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TooLazyToCreate/student-directory/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeStudentRepo struct {
	students    []model.Student
	err         error
	hadDeadline bool
}

func (f *fakeStudentRepo) List(ctx context.Context) ([]model.Student, error) {
	_, f.hadDeadline = ctx.Deadline()
	return f.students, f.err
}

func getStudents(t *testing.T, service *DirectoryService) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	service.HandleList(rec, httptest.NewRequest(http.MethodGet, "/estudiantes", nil))
	return rec
}

func strPtr(s string) *string { return &s }

func TestHandleList_Empty(t *testing.T) {
	for name, students := range map[string][]model.Student{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			service := NewDirectoryService(zaptest.NewLogger(t), &fakeStudentRepo{students: students}, 0)

			rec := getStudents(t, service)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `[]`, rec.Body.String())
		})
	}
}

func TestHandleList_AllRows(t *testing.T) {
	birth := model.NewDate(time.Date(2002, time.July, 9, 0, 0, 0, 0, time.UTC))
	repo := &fakeStudentRepo{students: []model.Student{
		{ID: 1, Nombre: "Ana", Apellido: "Pérez", Email: strPtr("ana@x.com"), FechaNacimiento: birth},
		{ID: 2, Nombre: "Ana", Apellido: "Pérez", Email: strPtr("ana@x.com"), FechaNacimiento: birth},
		{ID: 3, Nombre: "Luis", Apellido: "Gómez"},
	}}
	service := NewDirectoryService(zaptest.NewLogger(t), repo, time.Second)

	rec := getStudents(t, service)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.hadDeadline)
	assert.JSONEq(t, `[
		{"id":1,"nombre":"Ana","apellido":"Pérez","email":"ana@x.com","fecha_nacimiento":"2002-07-09"},
		{"id":2,"nombre":"Ana","apellido":"Pérez","email":"ana@x.com","fecha_nacimiento":"2002-07-09"},
		{"id":3,"nombre":"Luis","apellido":"Gómez","email":null,"fecha_nacimiento":null}
	]`, rec.Body.String())

	var decoded []model.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Len(t, decoded, 3)
}

func TestHandleList_StorageFailure(t *testing.T) {
	repo := &fakeStudentRepo{err: errors.New("pq: password authentication failed")}
	service := NewDirectoryService(zaptest.NewLogger(t), repo, 0)

	rec := getStudents(t, service)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error del servidor"}`, rec.Body.String())
	assert.False(t, repo.hadDeadline)
}
