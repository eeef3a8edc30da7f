package service

import (
	"context"
	"net/http"
	"time"

	"github.com/TooLazyToCreate/student-directory/internal/model"
	"github.com/TooLazyToCreate/student-directory/internal/repository"
	"go.uber.org/zap"
)

type DirectoryService struct {
	logger       *zap.Logger
	studentRepo  repository.StudentRepository
	queryTimeout time.Duration
}

func NewDirectoryService(logger *zap.Logger, studentRepo repository.StudentRepository, queryTimeout time.Duration) *DirectoryService {
	return &DirectoryService{
		logger:       logger,
		studentRepo:  studentRepo,
		queryTimeout: queryTimeout,
	}
}

// List returns every stored student in storage order.
func (service *DirectoryService) List(ctx context.Context) ([]model.Student, error) {
	if service.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, service.queryTimeout)
		defer cancel()
	}
	return service.studentRepo.List(ctx)
}

func (service *DirectoryService) HandleList(w http.ResponseWriter, req *http.Request) {
	students, err := service.List(req.Context())
	if err != nil {
		writeError(service.logger, w, http.StatusInternalServerError, msgServerError)
		service.logger.Error("Failed to list students", zap.Error(err), zap.String("ip", req.RemoteAddr))
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	writeJSON(service.logger, w, http.StatusOK, students)
}
