package permission

import (
	"github.com/jordymora1978/dropux-admin/internal/catalog"
)

type Role string

const (
	SuperAdmin  Role = "super_admin"
	Admin       Role = "admin"
	Advisor     Role = "advisor"
	Marketplace Role = "marketplace"
	Dropshipper Role = "dropshipper"
	Supplier    Role = "supplier"
)

// Roles lists every role in menu order.
var Roles = []Role{SuperAdmin, Admin, Advisor, Marketplace, Dropshipper, Supplier}

var roleDescriptions = map[Role]string{
	SuperAdmin:  "Full access, manages restricted pages",
	Admin:       "Company administrator",
	Advisor:     "Sales advisor",
	Marketplace: "Marketplace seller",
	Dropshipper: "Dropshipping partner",
	Supplier:    "Product supplier",
}

func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Privileged reports whether the role bypasses restricted-page filtering.
func (r Role) Privileged() bool {
	return r == SuperAdmin
}

func (r Role) Description() string {
	return roleDescriptions[r]
}

var defaultGrants = map[Role][]string{
	Admin: {
		"dashboard", "orders", "quotes", "customers", "messages",
		"stores", "settings", "profile",
		"control-panel", "logistics", "billing", "reports",
		"products", "product-catalog", "inventory", "suppliers",
		"admin-users",
	},
	Advisor:     {"dashboard", "orders", "quotes", "customers", "messages", "profile"},
	Marketplace: {"dashboard", "orders", "stores", "products", "product-catalog", "profile"},
	Dropshipper: {"dashboard", "orders", "product-catalog", "profile"},
	Supplier:    {"dashboard", "products", "inventory", "profile"},
}

// DefaultPermissions is the seeded role map. The privileged role gets the
// whole catalog; unknown IDs in the grant table are skipped.
func DefaultPermissions(c *catalog.Catalog) Map {
	m := Map{SuperAdmin: c.IDs()}
	for role, ids := range defaultGrants {
		var set []string
		for _, id := range ids {
			if c.Contains(id) {
				set = addID(set, id)
			}
		}
		m[role] = set
	}
	return m
}

// RoleNames returns every role as a plain string, in menu order.
func RoleNames() []string {
	out := make([]string, len(Roles))
	for i, r := range Roles {
		out[i] = string(r)
	}
	return out
}
