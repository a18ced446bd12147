package errors_test

import (
	"io"
	"testing"

	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	require.Nil(t, cerror.WrapError(cerror.ErrResourceAccess, nil, "foo"))

	err := cerror.WrapError(cerror.ErrResourceAccess, io.ErrUnexpectedEOF, "foo")
	require.Error(t, err)
	require.True(t, cerror.Is(err, cerror.ErrResourceAccess))
	require.False(t, cerror.Is(err, cerror.ErrInvalidArgument))
}

func TestIsFollowsTracedErrors(t *testing.T) {
	err := cerror.ErrInvalidArgument.GenWithStackByArgs("empty path")
	require.True(t, cerror.Is(err, cerror.ErrInvalidArgument))

	traced := errors.Trace(err)
	require.True(t, cerror.Is(traced, cerror.ErrInvalidArgument))

	annotated := errors.Annotate(traced, "failed to load job #1")
	require.True(t, cerror.Is(annotated, cerror.ErrInvalidArgument))
	require.False(t, cerror.Is(annotated, cerror.ErrTransportFault))
}

func TestIsPlainErrors(t *testing.T) {
	require.False(t, cerror.Is(nil, cerror.ErrInvalidArgument))
	require.False(t, cerror.Is(io.EOF, cerror.ErrInvalidArgument))
	require.False(t, cerror.Is(errors.New("boom"), cerror.ErrInvalidArgument))
}
