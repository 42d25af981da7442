// Package cart owns the visitor's cart: its persisted form, the mutations
// the storefront allows on it, and its rendered view.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vetaris/storefront-golang/internal/models"
	"github.com/vetaris/storefront-golang/internal/storage"
	"go.uber.org/zap"
)

// StorageKey is the slot the cart lives under in a visitor namespace.
const StorageKey = "cart"

// Store persists a Cart as a single JSON array of lines.
type Store struct {
	kv  storage.KV
	log *zap.Logger
}

func NewStore(kv storage.KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

// Load returns the persisted cart. Missing, unreadable or malformed data
// all come back as an empty cart.
func (s *Store) Load(ctx context.Context) models.Cart {
	data, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("cart read failed, starting empty", zap.Error(err))
		}
		return models.Cart{}
	}

	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		s.log.Debug("discarding malformed cart", zap.Error(err))
		return models.Cart{}
	}

	// Lines that could never have been produced by the controller are dropped.
	valid := lines[:0]
	for _, line := range lines {
		if line.ProductID == 0 || line.Quantity < 1 {
			s.log.Debug("dropping invalid cart line", zap.Int64("product_id", line.ProductID), zap.Int("quantity", line.Quantity))
			continue
		}
		valid = append(valid, line)
	}
	if len(valid) == 0 {
		return models.Cart{}
	}
	return models.Cart{Lines: valid}
}

// Save overwrites the persisted cart with cart.
func (s *Store) Save(ctx context.Context, cart models.Cart) error {
	lines := cart.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear removes the persisted cart entirely.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
