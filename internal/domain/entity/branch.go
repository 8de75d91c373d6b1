package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sucursales del negocio. Es la única enumeración de sucursales del sistema:
// validador, proyector, persistencia y estadísticas la consumen desde aquí.
// Agregar una sucursal es un cambio de código, no una migración de datos.
const (
	BranchSantaRosa = "Santa Rosa"
	BranchMacachin  = "Macachín"
)

// Branches lista ordenada de sucursales conocidas.
var Branches = []string{BranchSantaRosa, BranchMacachin}

var branchKeys = func() map[string]string {
	m := make(map[string]string, len(Branches))
	for _, b := range Branches {
		m[foldBranch(b)] = b
	}
	return m
}()

// IsBranch indica si name es exactamente una sucursal conocida (forma canónica).
func IsBranch(name string) bool {
	for _, b := range Branches {
		if b == name {
			return true
		}
	}
	return false
}

// NormalizeBranch devuelve el nombre canónico de la sucursal ignorando mayúsculas,
// tildes y espacios sobrantes ("macachin" → "Macachín"). ok=false si no es una sucursal conocida.
func NormalizeBranch(name string) (string, bool) {
	canonical, ok := branchKeys[foldBranch(name)]
	return canonical, ok
}

// EmptyBranchStock devuelve un mapa con todas las sucursales en cero.
func EmptyBranchStock() map[string]int {
	m := make(map[string]int, len(Branches))
	for _, b := range Branches {
		m[b] = 0
	}
	return m
}

func foldBranch(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}
