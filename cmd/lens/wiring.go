package main

import (
	"context"

	"github.com/getlens/lens/pkg/analyzer"
	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/gateway"
	"github.com/getlens/lens/pkg/insights"
	"github.com/getlens/lens/pkg/metadata"
	"github.com/getlens/lens/pkg/pipeline"
	"github.com/getlens/lens/pkg/retriever"
	"github.com/getlens/lens/pkg/server"
	"github.com/getlens/lens/pkg/warehouse"
)

// The *OrNil helpers keep typed nils out of the interface fields so the
// consumers' nil checks behave.

func classifierOrNil(g *gateway.Gateway) analyzer.Classifier {
	if g == nil {
		return nil
	}
	return g
}

func generatorOrNil(g *gateway.Gateway) insights.Generator {
	if g == nil {
		return nil
	}
	return g
}

func repoOrNil(r *metadata.Repository) pipeline.Repository {
	if r == nil {
		return nil
	}
	return r
}

func readerOrNil(r *metadata.Repository) server.Reader {
	if r == nil {
		return nil
	}
	return r
}

// emptyWarehouse satisfies the retriever when no warehouse is configured.
type emptyWarehouse struct{}

func (emptyWarehouse) Sales(context.Context, int) []bi.SalesRecord        { return nil }
func (emptyWarehouse) Inventory(context.Context) []bi.InventoryItem       { return nil }
func (emptyWarehouse) Customers(context.Context, int) []bi.CustomerRecord { return nil }
func (emptyWarehouse) Metrics(context.Context) *bi.MetricsContext         { return nil }

func warehouseOrEmpty(s *warehouse.Store) retriever.Warehouse {
	if s == nil {
		return emptyWarehouse{}
	}
	return s
}
