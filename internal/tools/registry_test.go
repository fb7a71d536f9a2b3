package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(context.Context, *Kit, map[string]any) (any, error) {
	return nil, nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("cat", &Operation{Name: "b", Handler: noopHandler}))
	require.NoError(t, reg.Register("cat", &Operation{Name: "a", Handler: noopHandler}))

	op, ok := reg.Lookup("cat", "a")
	require.True(t, ok)
	assert.Equal(t, "a", op.Name)

	_, ok = reg.Lookup("cat", "missing")
	assert.False(t, ok)
	_, ok = reg.Lookup("other", "a")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, reg.OperationNames("cat"))
}

func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("cat", &Operation{Name: "a", Handler: noopHandler}))
	assert.Error(t, reg.Register("cat", &Operation{Name: "a", Handler: noopHandler}))
}

func TestRegistryRejectsInvalid(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register("cat", nil))
	assert.Error(t, reg.Register("cat", &Operation{Name: ""}))
	assert.Error(t, reg.Register("cat", &Operation{Name: "a"}))
}

func TestRegisterAllCategories(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterAll(reg))

	assert.Equal(t, []string{
		CategoryDocker, CategoryFilesystem, CategoryRepository, CategorySystem,
	}, reg.Categories())

	// Spot-check one operation per category.
	for _, probe := range []struct{ cat, op string }{
		{CategoryFilesystem, "read_file"},
		{CategoryRepository, "commit_changes"},
		{CategoryDocker, "list_containers"},
		{CategorySystem, "server_help"},
	} {
		_, ok := reg.Lookup(probe.cat, probe.op)
		assert.True(t, ok, "%s/%s not registered", probe.cat, probe.op)
	}
}

func TestHelpCatalogMatchesRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterAll(reg))

	catalog := helpCatalog(reg, "")
	for _, cat := range reg.Categories() {
		entries, ok := catalog[cat].([]map[string]any)
		require.True(t, ok, "category %s missing from catalog", cat)
		assert.Len(t, entries, len(reg.OperationNames(cat)))
	}

	single := helpCatalog(reg, CategorySystem)
	assert.Len(t, single, 1)
	assert.Contains(t, single, CategorySystem)
}
