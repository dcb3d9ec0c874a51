package session

import (
	"sort"

	"github.com/desertthunder/flickx/internal/models"
)

// Directory is the fixed set of identities [Manager.Login] accepts, keyed by email.
type Directory struct {
	entries map[string]models.Identity
}

// NewDirectory creates a [Directory] from ids.
func NewDirectory(ids ...models.Identity) *Directory {
	d := &Directory{entries: make(map[string]models.Identity, len(ids))}
	for _, id := range ids {
		d.entries[id.Email] = id
	}
	return d
}

// DefaultDirectory holds the two demo identities: an administrator and a standard user.
func DefaultDirectory() *Directory {
	return NewDirectory(
		models.Identity{ID: "1", Email: "admin@example.com", Name: "Admin User", Role: models.RoleAdmin},
		models.Identity{ID: "2", Email: "user@example.com", Name: "Regular User", Role: models.RoleUser},
	)
}

// Lookup finds the identity registered under email. Matching is exact.
func (d *Directory) Lookup(email string) (models.Identity, bool) {
	id, ok := d.entries[email]
	return id, ok
}

// Identities returns every entry ordered by id.
func (d *Directory) Identities() []models.Identity {
	ids := make([]models.Identity, 0, len(d.entries))
	for _, id := range d.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].ID < ids[j].ID })
	return ids
}
