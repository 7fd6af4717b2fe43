package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Run("missing jwt secret is fatal", func(t *testing.T) {
		err := validate(&Config{})
		assert.EqualError(t, err, "JWT_SECRET is required")
	})

	t.Run("secret present", func(t *testing.T) {
		assert.NoError(t, validate(&Config{JWTSecret: "s3cret"}))
	})
}
