// Package store is the product/review/policy catalog backing the
// specialized capabilities.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Product is one catalog entry.
type Product struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Brand    string  `db:"brand" json:"brand"`
	Category string  `db:"category" json:"category"`
	Price    float64 `db:"price" json:"price"`
	Rating   float64 `db:"rating" json:"rating"`
	ImageURL string  `db:"image_url" json:"image_url,omitempty"`
}

// Review is one customer review.
type Review struct {
	ID        int64  `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"product_id"`
	Rating    int    `db:"rating" json:"rating"`
	Title     string `db:"title" json:"title"`
	Body      string `db:"body" json:"body"`
}

// Policy is one store policy document.
type Policy struct {
	ID         string `db:"id" json:"id"`
	PolicyType string `db:"policy_type" json:"policy_type"`
	Title      string `db:"title" json:"title"`
	Body       string `db:"body" json:"body"`
}

// ProductFilter narrows a catalog search. All fields optional, combined
// with AND.
type ProductFilter struct {
	Category  string
	Brand     string
	NameLike  string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	Limit     int
}

// Store wraps the catalog database.
type Store struct {
	db *sqlx.DB
}

// New opens (and initializes) the catalog at path. Use ":memory:" in tests.
func New(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute pragma: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
id TEXT PRIMARY KEY,
name TEXT NOT NULL,
brand TEXT NOT NULL DEFAULT '',
category TEXT NOT NULL DEFAULT '',
price REAL NOT NULL,
rating REAL NOT NULL DEFAULT 0,
image_url TEXT NOT NULL DEFAULT ''
)`,
		`CREATE TABLE IF NOT EXISTS reviews (
id INTEGER PRIMARY KEY AUTOINCREMENT,
product_id TEXT NOT NULL,
rating INTEGER NOT NULL,
title TEXT NOT NULL DEFAULT '',
body TEXT NOT NULL DEFAULT '',
FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS policies (
id TEXT PRIMARY KEY,
policy_type TEXT NOT NULL,
title TEXT NOT NULL,
body TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SearchProducts returns catalog entries matching the filter, best-rated
// first.
func (s *Store) SearchProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	var conds []string
	var args []any

	if f.Category != "" {
		conds = append(conds, "category LIKE ?")
		args = append(args, "%"+f.Category+"%")
	}
	if f.Brand != "" {
		conds = append(conds, "brand LIKE ?")
		args = append(args, "%"+f.Brand+"%")
	}
	if f.NameLike != "" {
		conds = append(conds, "name LIKE ?")
		args = append(args, "%"+f.NameLike+"%")
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.MinRating != nil {
		conds = append(conds, "rating >= ?")
		args = append(args, *f.MinRating)
	}

	query := "SELECT id, name, brand, category, price, rating, image_url FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY rating DESC"

	limit := f.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var products []Product
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// FindProductByName returns the best name match, or nil when nothing
// matches.
func (s *Store) FindProductByName(ctx context.Context, name string) (*Product, error) {
	var p Product
	err := s.db.GetContext(ctx, &p,
		"SELECT id, name, brand, category, price, rating, image_url FROM products WHERE name LIKE ? ORDER BY rating DESC LIMIT 1",
		"%"+name+"%")
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

// ReviewsForProduct returns up to limit reviews for a product.
func (s *Store) ReviewsForProduct(ctx context.Context, productID string, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = 20
	}
	var reviews []Review
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT id, product_id, rating, title, body FROM reviews WHERE product_id = ? ORDER BY id DESC LIMIT ?",
		productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	return reviews, nil
}

// SearchPolicies returns policies whose text matches any of the query's
// keywords.
func (s *Store) SearchPolicies(ctx context.Context, query string, limit int) ([]Policy, error) {
	if limit <= 0 {
		limit = 3
	}

	var all []Policy
	if err := s.db.SelectContext(ctx, &all,
		"SELECT id, policy_type, title, body FROM policies"); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	keywords := strings.Fields(strings.ToLower(query))
	var matched []Policy
	for _, p := range all {
		haystack := strings.ToLower(p.PolicyType + " " + p.Title + " " + p.Body)
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				matched = append(matched, p)
				break
			}
		}
		if len(matched) >= limit {
			break
		}
	}
	return matched, nil
}

// AddProduct inserts or replaces a catalog entry.
func (s *Store) AddProduct(ctx context.Context, p Product) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO products (id, name, brand, category, price, rating, image_url) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Brand, p.Category, p.Price, p.Rating, p.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to add product: %w", err)
	}
	return nil
}

// AddReview inserts a review.
func (s *Store) AddReview(ctx context.Context, r Review) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO reviews (product_id, rating, title, body) VALUES (?, ?, ?, ?)",
		r.ProductID, r.Rating, r.Title, r.Body)
	if err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}
	return nil
}

// AddPolicy inserts or replaces a policy document.
func (s *Store) AddPolicy(ctx context.Context, p Policy) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO policies (id, policy_type, title, body) VALUES (?, ?, ?, ?)",
		p.ID, p.PolicyType, p.Title, p.Body)
	if err != nil {
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return nil
}
