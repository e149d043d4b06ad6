package validation_test

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/user-account-service/pkg/validation"
)

type signup struct {
	Handle   string `json:"handle" validate:"required,handle"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	validation.Register(v)
	return v
}

func TestToDetails_FieldNamesAndMessages(t *testing.T) {
	err := newValidator().Struct(signup{Handle: "a!", Email: "nope", Password: "123"})
	d := validation.ToDetails(err)

	assert.Equal(t, "must be 3 to 32 letters or numbers", d["handle"])
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "must be between 6 and 72 characters", d["password"])
}

func TestToDetails_Required(t *testing.T) {
	d := validation.ToDetails(newValidator().Struct(signup{}))
	assert.Equal(t, map[string]string{"handle": "is required", "email": "is required", "password": "is required"}, d)
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var s signup
	err := json.Unmarshal([]byte(`{"handle":`), &s)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, validation.ToDetails(err))
	assert.Nil(t, validation.ToDetails(nil))
}
