package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := Wrap(KindQuota, MsgStorageQuotaExceeded, errors.New("disk full"))
	wrapped := fmt.Errorf("save decks: %w", base)

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindQuota, kind)
	assert.True(t, Is(wrapped, KindQuota))
	assert.False(t, Is(wrapped, KindStorage))
}

func TestKindOf_PlainError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	assert.False(t, ok)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(KindStorage, MsgStorageSaveFailed, cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORAGE_ERROR")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, MsgDeckCodeRequired, UserMessage(New(KindValidation, MsgDeckCodeRequired)))
	assert.Equal(t, MsgBulkProcessFailed, UserMessage(errors.New("unexpected")))
}

func TestWithDetail(t *testing.T) {
	err := New(KindParse, MsgStorageParseFailed).WithDetail("key", "pokemonTcgDeckList")
	assert.Equal(t, "pokemonTcgDeckList", err.Details["key"])
}
