package handlers

import (
	"strings"
	"testing"

	"github.com/EO-DataHub/eodhp-user-services/models"
	"github.com/stretchr/testify/assert"
)

func validRequest() models.UserRequest {
	return models.UserRequest{
		Username:  "test-user",
		Email:     "email@test.com",
		Password:  "pass",
		FirstName: "fi",
		LastName:  "la",
	}
}

func TestValidateUserRequest_Valid(t *testing.T) {
	assert.Nil(t, ValidateUserRequest(validRequest()))
}

func TestValidateUserRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.UserRequest)
		field   string
		message string
	}{
		{"blank username", func(r *models.UserRequest) { r.Username = "   " }, "username", "must not be blank"},
		{"short username", func(r *models.UserRequest) { r.Username = "a" }, "username", "size must be at least 2"},
		{"long username", func(r *models.UserRequest) { r.Username = strings.Repeat("a", 31) }, "username", "size must be at most 30"},
		{"missing email", func(r *models.UserRequest) { r.Email = "" }, "email", "must not be blank"},
		{"bad email", func(r *models.UserRequest) { r.Email = "user.com" }, "email", "must be a well-formed email address"},
		{"short password", func(r *models.UserRequest) { r.Password = "abc" }, "password", "size must be at least 4"},
		{"blank first name", func(r *models.UserRequest) { r.FirstName = "" }, "firstName", "must not be blank"},
		{"long last name", func(r *models.UserRequest) { r.LastName = strings.Repeat("b", 31) }, "lastName", "size must be at most 30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			violations := ValidateUserRequest(req)
			assert.Equal(t, ValidationErrors{tt.field: tt.message}, violations)
		})
	}
}

func TestValidateUserRequest_ReportsEveryField(t *testing.T) {
	violations := ValidateUserRequest(models.UserRequest{})

	assert.Len(t, violations, 5)
	assert.Equal(t, "validation failed: email: must not be blank; firstName: must not be blank; "+
		"lastName: must not be blank; password: must not be blank; username: must not be blank",
		violations.Error())
}
