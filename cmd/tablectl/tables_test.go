package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.tablekeeper.dev/seating/allocator"
	"gopkg.in/yaml.v2"
)

func TestSnapshotOutputFormats(t *testing.T) {
	var a, err = allocator.New([]int{2, 4, 6})
	require.NoError(t, err)

	var arrived = time.Now().Add(-3 * time.Minute)
	for _, g := range []allocator.ClientsGroup{
		{ID: 1, Size: 2, ArrivedAt: arrived},
		{ID: 2, Size: 3, ArrivedAt: arrived},
		{ID: 3, Size: 1, ArrivedAt: arrived},
		{ID: 4, Size: 6, ArrivedAt: arrived},
		{ID: 5, Size: 5, ArrivedAt: arrived},
	} {
		require.NoError(t, a.Admit(g))
	}
	var snapshot = a.Snapshot()
	require.Len(t, snapshot.Waitlist, 1)

	// Case: table format, with the waitlist.
	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, "table", true, snapshot))

	var out = buf.String()
	require.Contains(t, out, "1 (2)")
	require.Contains(t, out, "3 (1), 5 (5)")
	require.Contains(t, out, "partial")
	require.Contains(t, out, "full")
	require.Contains(t, out, "1 waitlisted group(s)")
	require.Contains(t, out, "3 minutes ago")

	// Case: YAML round-trips to the Snapshot.
	buf.Reset()
	require.NoError(t, writeSnapshot(&buf, "yaml", false, snapshot))

	var fromYAML struct {
		Tables []struct {
			Index    int `yaml:"index"`
			Occupied int `yaml:"occupied"`
		} `yaml:"tables"`
		Waitlist []struct {
			ID   int64 `yaml:"id"`
			Size int   `yaml:"size"`
		} `yaml:"waitlist"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	require.Len(t, fromYAML.Tables, 3)
	require.Equal(t, 3, fromYAML.Tables[1].Occupied)
	require.Equal(t, int64(4), fromYAML.Waitlist[0].ID)

	// Case: JSON.
	buf.Reset()
	require.NoError(t, writeSnapshot(&buf, "json", false, snapshot))

	var fromJSON allocator.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	require.Len(t, fromJSON.Tables, 3)
	require.Equal(t, snapshot.Tables[2].Groups[0].ID, fromJSON.Tables[2].Groups[0].ID)
}

func TestTableState(t *testing.T) {
	require.Equal(t, "empty", tableState(allocator.TableView{Capacity: 4}))
	require.Equal(t, "partial", tableState(allocator.TableView{Capacity: 4, Occupied: 1}))
	require.Equal(t, "full", tableState(allocator.TableView{Capacity: 4, Occupied: 4}))
}
