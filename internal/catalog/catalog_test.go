package catalog_test

import (
	"testing"

	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	c := catalog.Default()

	t.Run("Every page resolves to itself", func(t *testing.T) {
		for _, p := range c.Pages() {
			got, ok := c.Resolve(p.ID)
			assert.True(t, ok, p.ID)
			assert.Equal(t, p, got)
		}
	})

	t.Run("Unknown ID", func(t *testing.T) {
		_, ok := c.Resolve("does-not-exist")
		assert.False(t, ok)
	})

	t.Run("IDs are unique", func(t *testing.T) {
		seen := map[string]bool{}
		for _, id := range c.IDs() {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("Pages carry their group category", func(t *testing.T) {
		p, ok := c.Resolve("roles")
		assert.True(t, ok)
		assert.Equal(t, catalog.CategorySuperAdmin, p.Category)
		assert.Len(t, c.ByCategory(catalog.CategoryMain), 5)
	})
}

func TestIDToName(t *testing.T) {
	c := catalog.Default()

	assert.Equal(t, "Cotizaciones", c.IDToName("quotes"))
	assert.Equal(t, "ghost-page", c.IDToName("ghost-page"))
}

func TestNameToID(t *testing.T) {
	c := catalog.Default()

	t.Run("Exact ID", func(t *testing.T) {
		assert.Equal(t, "orders", c.NameToID("orders"))
	})

	t.Run("Exact display name", func(t *testing.T) {
		assert.Equal(t, "orders", c.NameToID("Órdenes"))
	})

	t.Run("Legacy synonym", func(t *testing.T) {
		assert.Equal(t, "quotes", c.NameToID("Mis Cotizaciones"))
	})

	t.Run("Every synonym resolves into the catalog", func(t *testing.T) {
		for name := range c.Synonyms() {
			id := c.NameToID(name)
			assert.NotEmpty(t, id, name)
			assert.True(t, c.Contains(id), name)
		}
	})

	t.Run("Unknown name returns empty", func(t *testing.T) {
		assert.NotPanics(t, func() {
			assert.Equal(t, "", c.NameToID("Página Eliminada"))
			assert.Equal(t, "", c.NameToID(""))
		})
	})

	t.Run("Names round trip", func(t *testing.T) {
		for _, p := range c.Pages() {
			assert.Equal(t, p.ID, c.NameToID(c.IDToName(p.ID)))
		}
	})
}

func TestNewCatalogIsolation(t *testing.T) {
	c := catalog.New([]catalog.Group{
		{Category: catalog.CategoryMain, Pages: []catalog.Page{{ID: "a", Name: "A"}}},
	}, map[string]string{"Old A": "a", "Old B": "b"})

	assert.Equal(t, "a", c.NameToID("Old A"))
	assert.Equal(t, "", c.NameToID("Old B"), "synonyms pointing outside the catalog are ignored")

	pages := c.Pages()
	pages[0].Name = "mutated"
	assert.Equal(t, "A", c.IDToName("a"))
}
