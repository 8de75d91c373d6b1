package entity

import (
	"strings"
	"time"
)

// Category agrupa productos (velas, difusores, sahumerios...). El nombre es único.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CleanCategoryName recorta espacios y colapsa los internos ("Aceites   esenciales" -> "Aceites esenciales").
func CleanCategoryName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Rename cambia el nombre y marca la actualización.
func (c *Category) Rename(name string, at time.Time) {
	c.Name = CleanCategoryName(name)
	c.UpdatedAt = at
}
