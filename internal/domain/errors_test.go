package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	downloadErr := NewError(KindDownload, "clip not found", ErrSourceNotFound)

	assert.Equal(t, KindDownload, KindOf(downloadErr))
	assert.Equal(t, KindDownload, KindOf(fmt.Errorf("fetch clip 2: %w", downloadErr)))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain error")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestError_Unwrap(t *testing.T) {
	err := NewError(KindDownload, "clip too large", ErrSizeExceeded)

	assert.ErrorIs(t, err, ErrSizeExceeded)
	assert.Contains(t, err.Error(), "clip too large")
}
