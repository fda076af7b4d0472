package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerErrorWrapping(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("%w: read tcp: connection reset", ErrWorkerLost)
	err := error(&WorkerError{WorkerID: 3, Err: cause})

	require.ErrorIs(t, err, ErrWorkerLost)
	require.NotErrorIs(t, err, ErrWorkerFailure)

	var werr *WorkerError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, 3, werr.WorkerID)

	require.Equal(t, "worker 3: "+cause.Error(), err.Error())
	require.Equal(t, cause, errors.Unwrap(err))
}

func TestWorkerErrorThroughFurtherWrapping(t *testing.T) {
	t.Parallel()

	inner := &WorkerError{WorkerID: 1, Err: ErrStaleNeighbor}
	outer := fmt.Errorf("simulation aborted: %w", inner)

	require.ErrorIs(t, outer, ErrStaleNeighbor)

	var werr *WorkerError
	require.ErrorAs(t, outer, &werr)
	require.Equal(t, 1, werr.WorkerID)
}
