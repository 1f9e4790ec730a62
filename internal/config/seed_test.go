package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Universal-Commerce-Protocol/conformance/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed_Defaults(t *testing.T) {
	seed, err := LoadSeed("")
	require.NoError(t, err)

	assert.NotEmpty(t, seed.Products)
	assert.NotEmpty(t, seed.Instruments)

	// the failure fixtures must always be present in the default dataset
	var hasOutOfStock, hasFailingInstrument bool
	for _, p := range seed.Products {
		if p.Available == 0 {
			hasOutOfStock = true
		}
	}
	for _, in := range seed.Instruments {
		if in.ID == "instr_fail" {
			hasFailingInstrument = true
		}
	}
	assert.True(t, hasOutOfStock)
	assert.True(t, hasFailingInstrument)
}

func TestLoadSeed_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `
products:
  - id: sku-1
    title: Widget
    price: 1299
    available: 10
instruments:
  - id: instr_mc
    type: card
    brand: mastercard
    last4: "5100"
    token: tok_mc
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Products, 1)
	require.Len(t, seed.Instruments, 1)
	assert.Equal(t, int64(1299), seed.Products[0].Price)
	assert.Equal(t, "mastercard", seed.Instruments[0].Brand)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSeedApply(t *testing.T) {
	cat := catalog.NewMemoryCatalog()
	seed := &Seed{
		Products:    []SeedProduct{{ID: "sku-1", Title: "Widget", Price: 1299, Available: 5}},
		Instruments: []SeedInstrument{{ID: "instr_visa", Type: "card", Brand: "visa", Last4: "4242", Token: "tok"}},
	}

	instruments := seed.Apply(cat)

	p, err := cat.Lookup("sku-1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Available)

	require.Len(t, instruments, 1)
	assert.Equal(t, "instr_visa", instruments[0].ID)
}
