package tool

import (
	"context"
	"testing"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

func priced(name string, price float64) contractx.Product {
	return contractx.Product{Name: name, Price: price, Currency: "KWD", PriceKnown: true}
}

func unpriced(name string) contractx.Product {
	return contractx.Product{Name: name, Currency: "KWD"}
}

func fixtureProducts() []contractx.Product {
	return []contractx.Product{
		priced("Standard Wheelchair", 120),
		priced("Lightweight Wheelchair", 310),
		priced("Heavy Duty Wheelchair", 85),
		priced("Electric Wheelchair", 950),
		unpriced("Wheelchair Cushion"),
	}
}

func TestFilterCheapestRanksAscending(t *testing.T) {
	t.Parallel()

	out := NewFilter().Run(context.Background(), contractx.ToolInput{
		Products:   fixtureProducts(),
		Constraint: "show me the cheapest ones",
	})
	if !out.Success || out.FilterType != "cheapest" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.Count != 3 {
		t.Fatalf("count = %d, want 3", out.Count)
	}
	if out.Products[0].Price != 85 || out.Products[1].Price != 120 || out.Products[2].Price != 310 {
		t.Fatalf("unexpected ranking: %+v", out.Products)
	}
}

func TestFilterMostExpensiveRanksDescending(t *testing.T) {
	t.Parallel()

	out := NewFilter().Run(context.Background(), contractx.ToolInput{
		Products:   fixtureProducts(),
		Constraint: "which is the most expensive?",
	})
	if out.FilterType != "most_expensive" {
		t.Fatalf("filter type = %q", out.FilterType)
	}
	if out.Products[0].Price != 950 || out.Products[1].Price != 310 {
		t.Fatalf("unexpected ranking: %+v", out.Products)
	}
}

func TestFilterUnknownPricesSortLast(t *testing.T) {
	t.Parallel()

	products := []contractx.Product{
		unpriced("Mystery Walker"),
		priced("Basic Walker", 40),
	}
	out := NewFilter().Run(context.Background(), contractx.ToolInput{
		Products:   products,
		Constraint: "cheapest",
	})
	if out.Products[0].Name != "Basic Walker" {
		t.Fatalf("priced product should rank first: %+v", out.Products)
	}
	if out.Products[1].Name != "Mystery Walker" {
		t.Fatalf("unpriced product should rank last: %+v", out.Products)
	}
}

func TestFilterUnderKeepsAtOrBelowBound(t *testing.T) {
	t.Parallel()

	out := NewFilter().Run(context.Background(), contractx.ToolInput{
		Products:   fixtureProducts(),
		Constraint: "under 150",
	})
	if out.FilterType != "under" {
		t.Fatalf("filter type = %q", out.FilterType)
	}
	// 120, 85, and the unpriced cushion.
	if out.Count != 3 {
		t.Fatalf("count = %d, want 3: %+v", out.Count, out.Products)
	}
	for _, p := range out.Products {
		if p.PriceKnown && p.Price > 150 {
			t.Fatalf("product over bound kept: %+v", p)
		}
	}
}

func TestFilterOverKeepsAtOrAboveBound(t *testing.T) {
	t.Parallel()

	out := NewFilter().Run(context.Background(), contractx.ToolInput{
		Products:   fixtureProducts(),
		Constraint: "anything over 300?",
	})
	if out.FilterType != "over" {
		t.Fatalf("filter type = %q", out.FilterType)
	}
	// 310, 950, and the unpriced cushion.
	if out.Count != 3 {
		t.Fatalf("count = %d, want 3: %+v", out.Count, out.Products)
	}
}

func TestFilterBetweenKeepsRange(t *testing.T) {
	t.Parallel()

	out := NewFilter().Run(context.Background(), contractx.ToolInput{
		Products:   fixtureProducts(),
		Constraint: "between 100 and 400",
	})
	if out.FilterType != "between" {
		t.Fatalf("filter type = %q", out.FilterType)
	}
	// 120, 310, and the unpriced cushion.
	if out.Count != 3 {
		t.Fatalf("count = %d, want 3: %+v", out.Count, out.Products)
	}
}

func TestFilterBetweenAcceptsReversedBounds(t *testing.T) {
	t.Parallel()

	out := NewFilter().Run(context.Background(), contractx.ToolInput{
		Products:   fixtureProducts(),
		Constraint: "between 400 and 100",
	})
	if out.Count != 3 {
		t.Fatalf("count = %d, want 3: %+v", out.Count, out.Products)
	}
}

func TestFilterUnrecognizedConstraintPassesThrough(t *testing.T) {
	t.Parallel()

	products := fixtureProducts()
	out := NewFilter().Run(context.Background(), contractx.ToolInput{
		Products:   products,
		Constraint: "the blue ones",
	})
	if out.FilterType != "none" {
		t.Fatalf("filter type = %q, want none", out.FilterType)
	}
	if out.Count != len(products) {
		t.Fatalf("count = %d, want %d", out.Count, len(products))
	}
}

func TestFilterMissingBoundPassesThrough(t *testing.T) {
	t.Parallel()

	out := NewFilter().Run(context.Background(), contractx.ToolInput{
		Products:   fixtureProducts(),
		Constraint: "something under budget",
	})
	if out.FilterType != "none" || out.Count != len(fixtureProducts()) {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestFilterEmptyInputSucceedsEmpty(t *testing.T) {
	t.Parallel()

	out := NewFilter().Run(context.Background(), contractx.ToolInput{Constraint: "cheapest"})
	if !out.Success || out.Count != 0 {
		t.Fatalf("unexpected output: %+v", out)
	}
}
