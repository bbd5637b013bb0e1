package common

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
		{"nil", nil, KindNone},
		{"missing input", ErrMissingInput, KindMissingInput},
		{"wrapped wrong password", fmt.Errorf("unlock: %w", ErrWrongPassword), KindWrongPassword},
		{"corrupt", ErrCorruptVault, KindCorruptVault},
		{"invalid secret", fmt.Errorf("add: %w: bad base32", ErrInvalidSecret), KindInvalidSecret},
		{"not found", ErrorNotFound, KindNotFound},
		{"already initialized", ErrAlreadyInitialized, KindAlreadyInitialized},
		{"unknown", errors.New("disk on fire"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKind_Err_RoundTrip(t *testing.T) {
	for _, k := range []Kind{KindMissingInput, KindWrongPassword, KindCorruptVault, KindInvalidSecret, KindNotFound, KindAlreadyInitialized} {
		assert.Equal(t, k, KindOf(k.Err()), "kind %s", k)
	}
	assert.ErrorIs(t, Kind("bogus").Err(), ErrorInternal)
}
