package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/store"
)

func TestDemoProductsAreStorableAndPrintable(t *testing.T) {
	s := store.NewMemoryProducts()
	for _, p := range demoProducts() {
		require.NoError(t, s.Create(context.Background(), &p))
	}
	list, err := s.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, list, len(demoProducts()))

	r := label.NewResolver()
	for _, p := range list {
		assert.NotEqual(t, label.PlaceholderBarcode, r.Resolve(&p, "barcode"), p.Name)
		assert.NotEqual(t, "0.00", r.Resolve(&p, "mrp"), p.Name)
	}
}
