package tool

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

const rankedListSize = 3

// Filter narrows a product list by a price constraint expressed in plain
// language. It is fully deterministic: no model call, no provider call.
type Filter struct{}

func NewFilter() *Filter { return &Filter{} }

func (f *Filter) Name() string { return NameFilter }

var priceNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Run applies the first matching rule, in order: cheapest, most expensive,
// between, under, over. A constraint that matches nothing passes the list
// through unchanged. Products without a parseable price are never filtered
// out; ranked orderings put them last.
func (f *Filter) Run(ctx context.Context, in contractx.ToolInput) contractx.ToolOutput {
	products := in.Products
	constraint := strings.ToLower(strings.TrimSpace(in.Constraint))

	if len(products) == 0 {
		return contractx.ToolOutput{Success: true, Products: nil, Count: 0, FilterType: "none"}
	}

	var (
		filtered   []contractx.Product
		filterType string
	)

	switch {
	case containsAny(constraint, "cheapest", "lowest"):
		filtered = rankByPrice(products, true)
		filterType = "cheapest"

	case containsAny(constraint, "most expensive", "highest", "priciest"):
		filtered = rankByPrice(products, false)
		filterType = "most_expensive"

	case strings.Contains(constraint, "between"):
		low, high, ok := twoBounds(constraint)
		if !ok {
			filtered, filterType = products, "none"
			break
		}
		filtered = keepInRange(products, low, high)
		filterType = "between"

	case containsAny(constraint, "under", "below", "less than", "at most", "cheaper than"):
		bound, ok := oneBound(constraint)
		if !ok {
			filtered, filterType = products, "none"
			break
		}
		filtered = keepInRange(products, 0, bound)
		filterType = "under"

	case containsAny(constraint, "over", "above", "more than", "at least"):
		bound, ok := oneBound(constraint)
		if !ok {
			filtered, filterType = products, "none"
			break
		}
		filtered = keepAbove(products, bound)
		filterType = "over"

	default:
		filtered = products
		filterType = "none"
	}

	return contractx.ToolOutput{
		Success:    true,
		Products:   filtered,
		Count:      len(filtered),
		FilterType: filterType,
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// rankByPrice returns up to rankedListSize products sorted by price.
// Products with unknown prices sort after every priced one, preserving
// their relative order.
func rankByPrice(products []contractx.Product, ascending bool) []contractx.Product {
	ranked := make([]contractx.Product, len(products))
	copy(ranked, products)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.PriceKnown != b.PriceKnown {
			return a.PriceKnown
		}
		if !a.PriceKnown {
			return false
		}
		if ascending {
			return a.Price < b.Price
		}
		return a.Price > b.Price
	})

	if len(ranked) > rankedListSize {
		ranked = ranked[:rankedListSize]
	}
	return ranked
}

func keepInRange(products []contractx.Product, low, high float64) []contractx.Product {
	var kept []contractx.Product
	for _, p := range products {
		if !p.PriceKnown || (p.Price >= low && p.Price <= high) {
			kept = append(kept, p)
		}
	}
	return kept
}

func keepAbove(products []contractx.Product, bound float64) []contractx.Product {
	var kept []contractx.Product
	for _, p := range products {
		if !p.PriceKnown || p.Price >= bound {
			kept = append(kept, p)
		}
	}
	return kept
}

// oneBound extracts the single numeric bound from a constraint.
func oneBound(constraint string) (float64, bool) {
	match := priceNumberPattern.FindString(constraint)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// twoBounds extracts both bounds of a "between X and Y" constraint, in
// either order.
func twoBounds(constraint string) (low, high float64, ok bool) {
	matches := priceNumberPattern.FindAllString(constraint, 2)
	if len(matches) < 2 {
		return 0, 0, false
	}
	a, errA := strconv.ParseFloat(matches[0], 64)
	b, errB := strconv.ParseFloat(matches[1], 64)
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	if a > b {
		a, b = b, a
	}
	return a, b, true
}
