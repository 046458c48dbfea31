// Package fixtures serves the static catalog and account data the storefront
// ships with. The data is embedded YAML, optionally replaced by a file.
package fixtures

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/xgrltd/storefront/internal/domain/account"
	"github.com/xgrltd/storefront/internal/domain/catalog"
)

//go:embed data.yaml
var embedded []byte

// Data is the decoded fixture document
type Data struct {
	Products       []catalog.Product       `yaml:"products"`
	TeamMembers    []account.TeamMember    `yaml:"team_members"`
	Orders         []account.Order         `yaml:"orders"`
	Wishlist       []account.WishlistItem  `yaml:"wishlist"`
	Addresses      []account.Address       `yaml:"addresses"`
	PaymentMethods []account.PaymentMethod `yaml:"payment_methods"`
	Profile        account.Profile         `yaml:"profile"`
}

// Store answers catalog and account queries from fixture data. It is
// read-only and safe for concurrent use; every method returns copies.
type Store struct {
	data       Data
	productIdx map[int]int
	orderIdx   map[string]int
}

// Load returns a Store over the embedded fixtures
func Load() (*Store, error) {
	return Parse(bytes.NewReader(embedded))
}

// MustLoad is Load for callers that treat broken embedded data as a bug
func MustLoad() *Store {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// LoadFile returns a Store over the fixtures in path
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a fixture document. Unknown fields are rejected.
func Parse(r io.Reader) (*Store, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var data Data
	if err := dec.Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return New(data)
}

// New validates data and indexes it
func New(data Data) (*Store, error) {
	s := &Store{
		data:       data,
		productIdx: make(map[int]int, len(data.Products)),
		orderIdx:   make(map[string]int, len(data.Orders)),
	}

	for i, p := range data.Products {
		if _, dup := s.productIdx[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %d has a negative price", p.ID)
		}
		if !catalog.IsKnownCategory(p.Category) {
			return nil, fmt.Errorf("product %d has unknown category %q", p.ID, p.Category)
		}
		s.productIdx[p.ID] = i
	}

	for i, o := range data.Orders {
		if _, dup := s.orderIdx[o.ID]; dup {
			return nil, fmt.Errorf("duplicate order id %q", o.ID)
		}
		s.orderIdx[o.ID] = i
	}

	return s, nil
}

// FindAll returns every product in fixture order
func (s *Store) FindAll(ctx context.Context) ([]catalog.Product, error) {
	return slices.Clone(s.data.Products), nil
}

// FindByID returns one product or catalog.ErrProductNotFound
func (s *Store) FindByID(ctx context.Context, id int) (*catalog.Product, error) {
	i, ok := s.productIdx[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	p := s.data.Products[i]
	return &p, nil
}

// Orders returns the order history in fixture order
func (s *Store) Orders(ctx context.Context) ([]account.Order, error) {
	out := make([]account.Order, len(s.data.Orders))
	for i, o := range s.data.Orders {
		out[i] = cloneOrder(o)
	}
	return out, nil
}

// OrderByID returns one order or account.ErrOrderNotFound
func (s *Store) OrderByID(ctx context.Context, id string) (*account.Order, error) {
	i, ok := s.orderIdx[id]
	if !ok {
		return nil, account.ErrOrderNotFound
	}
	o := cloneOrder(s.data.Orders[i])
	return &o, nil
}

// Wishlist returns the saved products
func (s *Store) Wishlist(ctx context.Context) ([]account.WishlistItem, error) {
	return slices.Clone(s.data.Wishlist), nil
}

// Addresses returns the saved addresses
func (s *Store) Addresses(ctx context.Context) ([]account.Address, error) {
	return slices.Clone(s.data.Addresses), nil
}

// PaymentMethods returns the saved payment methods
func (s *Store) PaymentMethods(ctx context.Context) ([]account.PaymentMethod, error) {
	return slices.Clone(s.data.PaymentMethods), nil
}

// Profile returns the account holder
func (s *Store) Profile(ctx context.Context) (*account.Profile, error) {
	p := s.data.Profile
	return &p, nil
}

// TeamMembers returns the about-us team
func (s *Store) TeamMembers(ctx context.Context) ([]account.TeamMember, error) {
	return slices.Clone(s.data.TeamMembers), nil
}

func cloneOrder(o account.Order) account.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

var (
	_ catalog.ProductRepository = (*Store)(nil)
	_ account.Repository        = (*Store)(nil)
)
