package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	Category string `validate:"required,doccategory"`
}

type review struct {
	Status string `validate:"required,reviewstatus"`
}

func TestCustomTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	assert.NoError(t, v.Struct(upload{Category: "SYNERGY"}))
	assert.Error(t, v.Struct(upload{Category: "synergy"}))
	assert.Error(t, v.Struct(upload{Category: "JOURNAL"}))

	assert.NoError(t, v.Struct(review{Status: "approved"}))
	assert.NoError(t, v.Struct(review{Status: "rejected"}))
	assert.Error(t, v.Struct(review{Status: "pending"}))
}

func TestRegister(t *testing.T) {
	assert.NoError(t, Register())
}
