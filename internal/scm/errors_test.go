package scm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "typed", err: Errorf(KindAuth, "rejected"), want: KindAuth},
		{name: "wrapped", err: fmt.Errorf("listing: %w", Errorf(KindPermission, "403")), want: KindPermission},
		{name: "plain", err: errors.New("boom"), want: KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindNetwork, cause, "cannot reach server")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cannot reach server: connection refused", err.Error())
}

func TestAsError(t *testing.T) {
	e := AsError(errors.New("boom"))
	assert.Equal(t, KindUnexpected, e.Kind)
	assert.Equal(t, "boom", e.Message)

	nf := Errorf(KindNotFound, "missing")
	assert.Same(t, nf, AsError(fmt.Errorf("wrapped: %w", nf)))
}
