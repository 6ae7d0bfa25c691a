package tool

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	cachex "github.com/alessalabs/concierge/agent/cache"
	contractx "github.com/alessalabs/concierge/agent/contract"
)

// rawFallbackSize limits how many unfiltered results come back when keyword
// matching discards everything the provider returned.
const rawFallbackSize = 3

// Search looks products up through the catalog provider, cache first. A
// provider fault degrades to an empty successful-shape result with
// Success=false; it never aborts the turn.
type Search struct {
	provider contractx.CatalogProvider
	cache    *cachex.Cache
}

func NewSearch(provider contractx.CatalogProvider, cache *cachex.Cache) *Search {
	return &Search{provider: provider, cache: cache}
}

func (s *Search) Name() string { return NameSearch }

func (s *Search) Run(ctx context.Context, in contractx.ToolInput) contractx.ToolOutput {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return contractx.ToolOutput{Success: false, Count: 0}
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(cachex.NamespaceCatalog, strings.ToLower(query)); ok {
			if products, ok := cached.([]contractx.Product); ok {
				return contractx.ToolOutput{Success: true, Products: products, Count: len(products)}
			}
		}
	}

	if s.provider == nil {
		log.Warn().Str("query", query).Msg("catalog provider not configured")
		return contractx.ToolOutput{Success: false, Count: 0}
	}

	raw, err := s.provider.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("catalog search failed")
		return contractx.ToolOutput{Success: false, Count: 0}
	}

	products := matchByKeywords(raw, query)

	if s.cache != nil {
		s.cache.Set(cachex.NamespaceCatalog, products, strings.ToLower(query))
	}
	return contractx.ToolOutput{Success: true, Products: products, Count: len(products)}
}

// matchByKeywords keeps products whose name contains any significant query
// term. When that discards every result the provider gave us, the first few
// raw results come back instead; an irrelevant answer beats an empty one.
func matchByKeywords(raw []contractx.Product, query string) []contractx.Product {
	if len(raw) == 0 {
		return nil
	}

	terms := significantTerms(query)
	if len(terms) == 0 {
		return raw
	}

	var matched []contractx.Product
	for _, p := range raw {
		name := strings.ToLower(p.Name)
		for _, term := range terms {
			if strings.Contains(name, term) {
				matched = append(matched, p)
				break
			}
		}
	}

	if len(matched) == 0 {
		if len(raw) > rawFallbackSize {
			return raw[:rawFallbackSize]
		}
		return raw
	}
	return matched
}
