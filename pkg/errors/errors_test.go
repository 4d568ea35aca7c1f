package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError("landmark id is required"),
			want: "VALIDATION: landmark id is required",
		},
		{
			name: "with cause",
			err:  NewExternalError("failed to submit rating", fmt.Errorf("connection refused")),
			want: "EXTERNAL: failed to submit rating: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestTypeOf(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := fmt.Errorf("handler: %w", NewExternalError("upload failed", cause))

	assert.Equal(t, ErrorTypeExternal, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeInternal, TypeOf(cause))
	assert.True(t, IsType(wrapped, ErrorTypeExternal))
	assert.False(t, IsType(wrapped, ErrorTypeValidation))
	assert.ErrorIs(t, wrapped, cause)
}
