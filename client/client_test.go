package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.tablekeeper.dev/seating/allocator"
	"go.tablekeeper.dev/seating/http_gateway"
)

func TestClientAgainstGateway(t *testing.T) {
	var a, err = allocator.New([]int{2, 4})
	require.NoError(t, err)

	var srv = httptest.NewServer(http_gateway.NewGateway(a))
	defer srv.Close()

	var ctx = context.Background()
	var c = New(srv.URL+"/", srv.Client(), nil)

	require.NoError(t, c.Admit(ctx, allocator.ClientsGroup{ID: 1, Size: 2}))
	require.NoError(t, c.Admit(ctx, allocator.ClientsGroup{ID: 2, Size: 4}))
	require.NoError(t, c.Admit(ctx, allocator.ClientsGroup{ID: 3, Size: 3}))

	view, err := c.Lookup(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, view.Index)
	require.Equal(t, 4, view.Occupied)
	require.True(t, view.IsFull())

	snapshot, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Tables, 2)
	require.Len(t, snapshot.Waitlist, 1)
	require.Equal(t, allocator.GroupID(3), snapshot.Waitlist[0].ID)

	// Case: errors map to allocator sentinels.
	err = c.Admit(ctx, allocator.ClientsGroup{ID: 1, Size: 2})
	require.True(t, errors.Is(err, allocator.ErrDuplicateGroup))
	require.EqualError(t, err, "group 1: group already admitted")

	err = c.Admit(ctx, allocator.ClientsGroup{ID: 4, Size: -1})
	require.True(t, errors.Is(err, allocator.ErrInvalidGroup))

	_, err = c.Lookup(ctx, 3) // Waitlisted.
	require.Equal(t, allocator.ErrUnknownGroup, errors.Cause(err))

	err = c.Remove(ctx, allocator.ClientsGroup{ID: 3, Size: 3})
	require.Equal(t, allocator.ErrUnknownGroup, errors.Cause(err))

	// Departure of group 2 seats group 3.
	require.NoError(t, c.Remove(ctx, allocator.ClientsGroup{ID: 2, Size: 4}))

	view, err = c.Lookup(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 1, view.Index)
}

func TestClientWithLookupCache(t *testing.T) {
	var a, err = allocator.New([]int{4})
	require.NoError(t, err)

	var srv = httptest.NewServer(http_gateway.NewGateway(a))
	defer srv.Close()

	var ctx = context.Background()
	var lc = NewLookupCache(8, time.Hour)
	var c = New(srv.URL, srv.Client(), lc)

	require.NoError(t, c.Admit(ctx, allocator.ClientsGroup{ID: 1, Size: 2}))
	_, err = c.Lookup(ctx, 1)
	require.NoError(t, err)

	// Admit group 2 directly: the cached view of group 1 is now stale.
	require.NoError(t, a.Admit(allocator.ClientsGroup{ID: 2, Size: 2}))

	view, err := c.Lookup(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, view.Occupied) // Cache hit.

	// Remove invalidates the cached view.
	require.NoError(t, c.Remove(ctx, allocator.ClientsGroup{ID: 1, Size: 2}))
	_, ok := lc.View(1)
	require.False(t, ok)

	_, err = c.Lookup(ctx, 1)
	require.Equal(t, allocator.ErrUnknownGroup, errors.Cause(err))

	view, err = c.Lookup(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 2, view.Occupied)
	require.Len(t, view.Groups, 1)
}

func TestClientUnreachable(t *testing.T) {
	var srv = httptest.NewServer(http_gateway.NewGateway(nil))
	var c = New(srv.URL, srv.Client(), nil)
	srv.Close()

	var _, err = c.Snapshot(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "GET /api/tables")
}
