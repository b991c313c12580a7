package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// StatusCount - строка результата GROUP BY status
type StatusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

type PlatformTotals struct {
	Users    int64 `db:"users" json:"users"`
	Listings int64 `db:"listings" json:"listings"`
	Offers   int64 `db:"offers" json:"offers"`
	News     int64 `db:"news" json:"news"`
}

// StatsRepository считает агрегаты прямым SQL, не загружая строки в память
type StatsRepository interface {
	ListingCountsByStatus(ctx context.Context, db *sqlx.DB, ownerID string) ([]StatusCount, error)
	SentOfferCountsByStatus(ctx context.Context, db *sqlx.DB, bidderID string) ([]StatusCount, error)
	ReceivedOfferCountsByStatus(ctx context.Context, db *sqlx.DB, ownerID string) ([]StatusCount, error)
	PlatformTotals(ctx context.Context, db *sqlx.DB) (*PlatformTotals, error)
}

type statsRepository struct{}

func NewStatsRepository() StatsRepository {
	return &statsRepository{}
}

const (
	listingCountsQuery = `SELECT status, COUNT(*) AS count FROM listings
		WHERE owner_id = ? AND status <> 'deleted'
		GROUP BY status`

	sentOfferCountsQuery = `SELECT status, COUNT(*) AS count FROM offers
		WHERE bidder_id = ?
		GROUP BY status`

	receivedOfferCountsQuery = `SELECT o.status AS status, COUNT(*) AS count FROM offers o
		JOIN listings l ON l.id = o.listing_id
		WHERE l.owner_id = ?
		GROUP BY o.status`

	platformTotalsQuery = `SELECT
		(SELECT COUNT(*) FROM users) AS users,
		(SELECT COUNT(*) FROM listings WHERE status <> 'deleted') AS listings,
		(SELECT COUNT(*) FROM offers) AS offers,
		(SELECT COUNT(*) FROM news_articles) AS news`
)

func (r *statsRepository) ListingCountsByStatus(ctx context.Context, db *sqlx.DB, ownerID string) ([]StatusCount, error) {
	return r.countByStatus(ctx, db, listingCountsQuery, ownerID)
}

func (r *statsRepository) SentOfferCountsByStatus(ctx context.Context, db *sqlx.DB, bidderID string) ([]StatusCount, error) {
	return r.countByStatus(ctx, db, sentOfferCountsQuery, bidderID)
}

func (r *statsRepository) ReceivedOfferCountsByStatus(ctx context.Context, db *sqlx.DB, ownerID string) ([]StatusCount, error) {
	return r.countByStatus(ctx, db, receivedOfferCountsQuery, ownerID)
}

func (r *statsRepository) PlatformTotals(ctx context.Context, db *sqlx.DB) (*PlatformTotals, error) {
	var totals PlatformTotals
	if err := db.GetContext(ctx, &totals, platformTotalsQuery); err != nil {
		return nil, err
	}
	return &totals, nil
}

// countByStatus - плейсхолдеры ? переписываются под драйвер (postgres: $1)
func (r *statsRepository) countByStatus(ctx context.Context, db *sqlx.DB, query string, arg string) ([]StatusCount, error) {
	var rows []StatusCount
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), arg); err != nil {
		return nil, err
	}
	return rows, nil
}
