package config

import (
	"fmt"
	"os"

	"github.com/Universal-Commerce-Protocol/conformance/internal/catalog"
	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
	"gopkg.in/yaml.v3"
)

// Seed holds the catalog products and default payment instruments the
// service starts with.
type Seed struct {
	Products    []SeedProduct    `yaml:"products"`
	Instruments []SeedInstrument `yaml:"instruments"`
}

type SeedProduct struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Price     int64  `yaml:"price"`
	Available int    `yaml:"available"`
}

type SeedInstrument struct {
	ID    string `yaml:"id"`
	Type  string `yaml:"type"`
	Brand string `yaml:"brand"`
	Last4 string `yaml:"last4"`
	Token string `yaml:"token"`
}

// DefaultSeed returns the built-in dataset used when no seed file is
// configured. It includes a permanently out-of-stock product and a payment
// instrument that always declines, so failure paths stay reachable.
func DefaultSeed() *Seed {
	return &Seed{
		Products: []SeedProduct{
			{ID: "item_1", Title: "Classic T-Shirt", Price: 1999, Available: 100},
			{ID: "item_2", Title: "Ceramic Mug", Price: 1250, Available: 40},
			{ID: "out_of_stock_item_1", Title: "Limited Edition Poster", Price: 3500, Available: 0},
		},
		Instruments: []SeedInstrument{
			{ID: "instr_visa", Type: "card", Brand: "visa", Last4: "4242", Token: "tok_visa_ok"},
			{ID: "instr_fail", Type: "card", Brand: "visa", Last4: "0341", Token: "fail_token"},
		},
	}
}

// LoadSeed reads a seed file, falling back to the defaults when path is
// empty.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// Apply loads the seed products into the catalog and returns the default
// instruments attached to new sessions.
func (s *Seed) Apply(cat catalog.Catalog) []domain.Instrument {
	for _, p := range s.Products {
		cat.SetProduct(catalog.Product{
			ID:        p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Available: p.Available,
		})
	}

	instruments := make([]domain.Instrument, len(s.Instruments))
	for i, in := range s.Instruments {
		instruments[i] = domain.Instrument{
			ID:    in.ID,
			Type:  in.Type,
			Brand: in.Brand,
			Last4: in.Last4,
			Token: in.Token,
		}
	}
	return instruments
}
