package client

import (
	"strings"

	"github.com/TooLazyToCreate/student-directory/internal/model"
)

// Filter keeps students whose nombre, apellido or email contains query,
// ignoring case. An empty query keeps everyone.
func Filter(students []model.Student, query string) []model.Student {
	query = strings.ToLower(query)
	if query == "" {
		return students
	}
	result := make([]model.Student, 0, len(students))
	for _, student := range students {
		if strings.Contains(strings.ToLower(student.Nombre), query) ||
			strings.Contains(strings.ToLower(student.Apellido), query) ||
			(student.Email != nil && strings.Contains(strings.ToLower(*student.Email), query)) {
			result = append(result, student)
		}
	}
	return result
}
