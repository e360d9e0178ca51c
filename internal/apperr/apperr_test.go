package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := NotFound("video %s not found", "v1")
	require.Equal(t, KindNotFound, KindOf(err))
	require.Equal(t, "video v1 not found", err.Error())

	// Kinds survive wrapping.
	wrapped := fmt.Errorf("submit: %w", Validation("bad value"))
	require.Equal(t, KindValidation, KindOf(wrapped))
	require.True(t, IsKind(wrapped, KindValidation))
	require.False(t, IsKind(wrapped, KindPermission))

	require.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindNames(t *testing.T) {
	names := map[Kind]string{
		KindNotFound:      "not_found",
		KindArchived:      "archived",
		KindValidation:    "validation",
		KindVerification:  "verification",
		KindPermission:    "permission",
		KindConflict:      "conflict",
		KindConfiguration: "configuration",
		KindUnknown:       "unknown",
	}
	for kind, want := range names {
		require.Equal(t, want, kind.String())
	}
}
