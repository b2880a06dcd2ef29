package index

import (
	"testing"

	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAbortingErrorWrapsAllocationFailures(t *testing.T) {
	assert.Nil(t, newAbortingError(nil))

	err := newAbortingError(util.ErrOutOfMemory)
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, util.ErrOutOfMemory)
	assert.True(t, isAborting(err))

	wrapped := newAbortingError(errors.Wrap(util.ErrOutOfMemory, "allocate postings"))
	assert.ErrorIs(t, wrapped, ErrAborted)
	assert.Equal(t, "allocate postings: "+util.ErrOutOfMemory.Error(), wrapped.Error())

	// already aborting: not wrapped twice
	assert.Same(t, err, newAbortingError(err))

	malformed := errors.Wrap(ErrMalformedTerm, "field body")
	assert.False(t, isAborting(malformed))
	assert.NotErrorIs(t, malformed, ErrAborted)
}
