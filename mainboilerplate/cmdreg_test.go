package mainboilerplate

import (
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/require"
)

type noopCmd struct {
	Flag string `long:"flag"`
}

func (noopCmd) Execute([]string) error { return nil }

func TestCommandRegistryBuildsTree(t *testing.T) {
	var cr = NewCommandRegistry()
	cr.AddCommand("", "groups", "groups", "", &struct{}{})
	cr.AddCommand("groups", "admit", "admit", "", &noopCmd{})
	cr.AddCommand("groups.admit", "nested", "nested", "", &noopCmd{})
	cr.AddCommand("", "tables", "tables", "", &struct{}{})
	cr.AddCommand("tables", "list", "list", "", &noopCmd{})

	var parser = flags.NewParser(nil, flags.None)
	require.NoError(t, cr.AddCommands("", parser.Command))

	var groups = parser.Find("groups")
	require.NotNil(t, groups)
	require.NotNil(t, groups.Find("admit"))
	require.NotNil(t, groups.Find("admit").Find("nested"))
	require.NotNil(t, parser.Find("tables").Find("list"))

	// Registrations under an unknown parent are never visited.
	cr.AddCommand("missing", "orphan", "orphan", "", &noopCmd{})
	require.NoError(t, cr.AddCommands("", flags.NewParser(nil, flags.None).Command))
}

func TestServiceConfigResolve(t *testing.T) {
	var cfg = ServiceConfig{Host: "example"}
	cfg.Resolve()

	require.NotEmpty(t, cfg.ID)
	require.Equal(t, "example", cfg.Host)

	cfg = ServiceConfig{ID: "fixed"}
	cfg.Resolve()
	require.Equal(t, "fixed", cfg.ID)
	require.NotEmpty(t, cfg.Host)
}
