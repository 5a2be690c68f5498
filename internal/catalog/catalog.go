// Package catalog is the static registry of every navigable page in the
// Dropux dashboard and the mapping between page IDs and display names.
//
// Page IDs are the only keys that should be persisted. Display names are
// still accepted at the HTTP boundary because older clients stored them.
package catalog

import (
	"github.com/jordymora1978/dropux-admin/internal/logger"
)

type Category string

const (
	CategoryMain       Category = "main"
	CategoryConfig     Category = "config"
	CategoryControl    Category = "control"
	CategoryProducts   Category = "products"
	CategorySuperAdmin Category = "superadmin"
)

type Page struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Path     string   `json:"path"`
	Category Category `json:"category"`
}

type Group struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Pages    []Page   `json:"pages"`
}

var groups = []Group{
	{Category: CategoryMain, Label: "Principal", Pages: []Page{
		{ID: "dashboard", Name: "Dashboard", Icon: "layout-dashboard", Path: "/dashboard"},
		{ID: "orders", Name: "Órdenes", Icon: "shopping-cart", Path: "/orders"},
		{ID: "quotes", Name: "Cotizaciones", Icon: "file-text", Path: "/quotes"},
		{ID: "customers", Name: "Clientes", Icon: "users", Path: "/customers"},
		{ID: "messages", Name: "Mensajes", Icon: "message-square", Path: "/messages"},
	}},
	{Category: CategoryConfig, Label: "Configuración", Pages: []Page{
		{ID: "stores", Name: "Tiendas", Icon: "store", Path: "/stores"},
		{ID: "settings", Name: "Configuración", Icon: "settings", Path: "/settings"},
		{ID: "profile", Name: "Mi Perfil", Icon: "user", Path: "/profile"},
	}},
	{Category: CategoryControl, Label: "Control", Pages: []Page{
		{ID: "control-panel", Name: "Panel de Control", Icon: "sliders", Path: "/control"},
		{ID: "logistics", Name: "Logística", Icon: "truck", Path: "/logistics"},
		{ID: "billing", Name: "Facturación", Icon: "receipt", Path: "/billing"},
		{ID: "reports", Name: "Reportes", Icon: "bar-chart", Path: "/reports"},
	}},
	{Category: CategoryProducts, Label: "Productos", Pages: []Page{
		{ID: "products", Name: "Productos", Icon: "package", Path: "/products"},
		{ID: "product-catalog", Name: "Catálogo", Icon: "book-open", Path: "/products/catalog"},
		{ID: "inventory", Name: "Inventario", Icon: "archive", Path: "/inventory"},
		{ID: "suppliers", Name: "Proveedores", Icon: "factory", Path: "/suppliers"},
	}},
	{Category: CategorySuperAdmin, Label: "Super Admin", Pages: []Page{
		{ID: "admin-users", Name: "Usuarios", Icon: "user-cog", Path: "/admin/users"},
		{ID: "roles", Name: "Roles y Permisos", Icon: "shield", Path: "/admin/roles"},
		{ID: "custom-menu", Name: "Menú Personalizado", Icon: "menu", Path: "/admin/custom-menu"},
		{ID: "private-pages", Name: "Páginas Privadas", Icon: "lock", Path: "/admin/private-pages"},
	}},
}

// legacySynonyms maps display strings used by earlier releases to current IDs.
var legacySynonyms = map[string]string{
	"Mis Cotizaciones":      "quotes",
	"Cotizaciones ML":       "quotes",
	"Mis Órdenes":           "orders",
	"Mis Ordenes":           "orders",
	"Ordenes":               "orders",
	"Pedidos":               "orders",
	"Inicio":                "dashboard",
	"Panel":                 "dashboard",
	"Mis Clientes":          "customers",
	"Tiendas ML":            "stores",
	"Mercado Libre":         "stores",
	"Conectar Tienda":       "stores",
	"Ajustes":               "settings",
	"Perfil":                "profile",
	"Control":               "control-panel",
	"Envíos":                "logistics",
	"Facturas":              "billing",
	"Catálogo de Productos": "product-catalog",
	"Stock":                 "inventory",
	"Gestión de Usuarios":   "admin-users",
	"Administrar Usuarios":  "admin-users",
	"Roles":                 "roles",
	"Permisos":              "roles",
	"Menú":                  "custom-menu",
	"Páginas Restringidas":  "private-pages",
	"Paginas Privadas":      "private-pages",
}

// Catalog is an immutable index over the page table.
type Catalog struct {
	groups   []Group
	pages    []Page
	byID     map[string]Page
	byName   map[string]string
	synonyms map[string]string
}

var def = New(groups, legacySynonyms)

// Default returns the compiled-in catalog.
func Default() *Catalog {
	return def
}

// New builds a catalog. Each page takes the category of the group it is listed in.
func New(gs []Group, synonyms map[string]string) *Catalog {
	c := &Catalog{
		byID:     make(map[string]Page),
		byName:   make(map[string]string),
		synonyms: make(map[string]string, len(synonyms)),
	}
	for _, g := range gs {
		group := Group{Category: g.Category, Label: g.Label}
		for _, p := range g.Pages {
			p.Category = g.Category
			group.Pages = append(group.Pages, p)
			c.pages = append(c.pages, p)
			c.byID[p.ID] = p
			if _, taken := c.byName[p.Name]; !taken {
				c.byName[p.Name] = p.ID
			}
		}
		c.groups = append(c.groups, group)
	}
	for k, v := range synonyms {
		c.synonyms[k] = v
	}
	return c
}

// Resolve looks a page up by exact ID.
func (c *Catalog) Resolve(id string) (Page, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// IDToName returns the display name, or the ID itself when it is unknown.
func (c *Catalog) IDToName(id string) string {
	if p, ok := c.byID[id]; ok {
		return p.Name
	}
	return id
}

// NameToID resolves an ID, a display name or a legacy synonym to a page ID.
// It returns "" when nothing matches; callers must drop such entries.
func (c *Catalog) NameToID(nameOrID string) string {
	if _, ok := c.byID[nameOrID]; ok {
		return nameOrID
	}
	if id, ok := c.byName[nameOrID]; ok {
		return id
	}
	if id, ok := c.synonyms[nameOrID]; ok {
		if _, known := c.byID[id]; known {
			return id
		}
	}
	logger.WithModule("catalog").Warnf("⚠️  Unknown page name or ID %q, ignoring", nameOrID)
	return ""
}

// Pages returns every page in catalog order.
func (c *Catalog) Pages() []Page {
	out := make([]Page, len(c.pages))
	copy(out, c.pages)
	return out
}

func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.pages))
	for _, p := range c.pages {
		out = append(out, p.ID)
	}
	return out
}

func (c *Catalog) Groups() []Group {
	out := make([]Group, 0, len(c.groups))
	for _, g := range c.groups {
		pages := make([]Page, len(g.Pages))
		copy(pages, g.Pages)
		out = append(out, Group{Category: g.Category, Label: g.Label, Pages: pages})
	}
	return out
}

func (c *Catalog) ByCategory(cat Category) []Page {
	for _, g := range c.groups {
		if g.Category == cat {
			pages := make([]Page, len(g.Pages))
			copy(pages, g.Pages)
			return pages
		}
	}
	return nil
}

// Synonyms returns a copy of the legacy name table.
func (c *Catalog) Synonyms() map[string]string {
	out := make(map[string]string, len(c.synonyms))
	for k, v := range c.synonyms {
		out[k] = v
	}
	return out
}
