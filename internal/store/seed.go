package store

import "context"

// ProductCount returns the number of catalog entries.
func (s *Store) ProductCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM products"); err != nil {
		return 0, err
	}
	return n, nil
}

// SeedDemo populates an empty catalog with a small demo dataset. A catalog
// that already has products is left untouched.
func (s *Store) SeedDemo(ctx context.Context) error {
	n, err := s.ProductCount(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	products := []Product{
		{ID: "lap-001", Name: "AeroBook 14", Brand: "Aero", Category: "laptop", Price: 749.99, Rating: 4.6},
		{ID: "lap-002", Name: "AeroBook Pro 16", Brand: "Aero", Category: "laptop", Price: 1499.00, Rating: 4.8},
		{ID: "lap-003", Name: "Voltura Slim 13", Brand: "Voltura", Category: "laptop", Price: 629.00, Rating: 4.3},
		{ID: "phn-001", Name: "Nimbus X2", Brand: "Nimbus", Category: "phone", Price: 899.00, Rating: 4.5},
		{ID: "phn-002", Name: "Nimbus Lite", Brand: "Nimbus", Category: "phone", Price: 449.00, Rating: 4.1},
		{ID: "hdp-001", Name: "SoundCore Buds", Brand: "Anker", Category: "headphones", Price: 59.99, Rating: 4.4},
		{ID: "hdp-002", Name: "QuietMax 700", Brand: "Auris", Category: "headphones", Price: 299.00, Rating: 4.7},
		{ID: "cam-001", Name: "PixelShot R10", Brand: "PixelShot", Category: "camera", Price: 549.00, Rating: 4.2},
		{ID: "tab-001", Name: "SlateTab 11", Brand: "Slate", Category: "tablet", Price: 399.00, Rating: 4.0},
	}
	for _, p := range products {
		if err := s.AddProduct(ctx, p); err != nil {
			return err
		}
	}

	reviews := []Review{
		{ProductID: "lap-001", Rating: 5, Title: "Great battery", Body: "Easily lasts a full workday."},
		{ProductID: "lap-001", Rating: 4, Title: "Good value", Body: "Solid build for the price."},
		{ProductID: "lap-002", Rating: 5, Title: "Workstation class", Body: "Handles heavy builds without breaking a sweat."},
		{ProductID: "hdp-002", Rating: 5, Title: "Silence", Body: "Best noise cancellation I've tried."},
		{ProductID: "hdp-002", Rating: 4, Title: "Comfortable", Body: "Wore them on a long flight, no fatigue."},
		{ProductID: "phn-001", Rating: 4, Title: "Great camera", Body: "Low-light shots are impressive."},
	}
	for _, r := range reviews {
		if err := s.AddReview(ctx, r); err != nil {
			return err
		}
	}

	policies := []Policy{
		{ID: "returns", PolicyType: "returns", Title: "Return policy", Body: "Items may be returned within 30 days of delivery in original condition for a full refund."},
		{ID: "shipping", PolicyType: "shipping", Title: "Shipping", Body: "Free standard shipping on orders over $35. Express delivery available at checkout."},
		{ID: "warranty", PolicyType: "warranty", Title: "Warranty", Body: "All electronics carry a one year manufacturer warranty. Extended coverage can be added within 30 days of purchase."},
		{ID: "price-match", PolicyType: "price_match", Title: "Price match", Body: "We match advertised prices from major retailers at the time of purchase."},
	}
	for _, p := range policies {
		if err := s.AddPolicy(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
