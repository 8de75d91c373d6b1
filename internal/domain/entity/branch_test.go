package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

func TestNormalizeBranch_IgnoraTildesYMayusculas(t *testing.T) {
	cases := map[string]string{
		"Macachín":     entity.BranchMacachin,
		"macachin":     entity.BranchMacachin,
		"  MACACHIN ":  entity.BranchMacachin,
		"santa rosa":   entity.BranchSantaRosa,
		"Santa   Rosa": entity.BranchSantaRosa,
	}
	for in, want := range cases {
		got, ok := entity.NormalizeBranch(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := entity.NormalizeBranch("Toay")
	assert.False(t, ok)
}

func TestEmptyBranchStock_TodasLasSucursalesEnCero(t *testing.T) {
	m := entity.EmptyBranchStock()
	assert.Len(t, m, len(entity.Branches))
	for _, b := range entity.Branches {
		assert.Equal(t, 0, m[b])
	}
	assert.True(t, entity.IsBranch(entity.BranchMacachin))
	assert.False(t, entity.IsBranch("macachin"), "IsBranch sólo acepta la forma canónica")
}

func TestCleanCategoryName_ColapsaEspacios(t *testing.T) {
	assert.Equal(t, "Aceites esenciales", entity.CleanCategoryName("  Aceites   esenciales "))
	assert.Equal(t, "", entity.CleanCategoryName("   "))
}
