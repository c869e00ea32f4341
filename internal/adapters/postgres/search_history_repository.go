package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSearchHistoryRepository хранит прогоны поиска и найденные объявления
type PostgresSearchHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSearchHistoryRepository(pool *pgxpool.Pool) (*PostgresSearchHistoryRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresSearchHistoryRepository{pool: pool}, nil
}

// Save записывает прогон и его объявления в одной транзакции
func (r *PostgresSearchHistoryRepository) Save(ctx context.Context, result *domain.SearchResult) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresSearchHistoryRepository",
		"method":    "Save",
		"search_id": result.ID.String(),
	})

	filtersJSON, err := encodeFilters(result.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}
	reportJSON, err := encodeReport(result.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO search_runs (id, emirate, area, filters, report, aborted, listings, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query,
		result.ID,
		result.Filters.Emirate,
		result.Filters.Area,
		filtersJSON,
		reportJSON,
		result.Report.Aborted,
		len(result.Listings),
		result.StartedAt,
		result.FinishedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to insert search run", err, nil)
		return fmt.Errorf("failed to insert search run: %w", err)
	}

	if len(result.Listings) > 0 {
		copied, err := tx.CopyFrom(ctx, pgx.Identifier{"search_run_listings"}, listingColumns, pgx.CopyFromRows(listingRows(result)))
		if err != nil {
			repoLogger.Error("Failed to copy listings", err, nil)
			return fmt.Errorf("failed to copy listings: %w", err)
		}
		repoLogger.Debug("Listings copied", port.Fields{"rows": copied})
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	repoLogger.Debug("Search run saved", port.Fields{"listings": len(result.Listings)})
	return nil
}

// FindByID возвращает прогон с объявлениями в исходном порядке
func (r *PostgresSearchHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresSearchHistoryRepository",
		"method":    "FindByID",
		"search_id": id.String(),
	})

	result := &domain.SearchResult{}
	var filtersJSON, reportJSON []byte

	query := `
		SELECT id, filters, report, started_at, finished_at
		FROM search_runs
		WHERE id = $1
	`
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&filtersJSON,
		&reportJSON,
		&result.StartedAt,
		&result.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Warn("Search run not found", nil)
			return nil, domain.ErrSearchNotFound
		}
		repoLogger.Error("Failed to find search run", err, nil)
		return nil, fmt.Errorf("failed to find search run: %w", err)
	}

	if result.Filters, err = decodeFilters(filtersJSON); err != nil {
		return nil, err
	}
	if result.Report, err = decodeReport(reportJSON); err != nil {
		return nil, err
	}

	listingsQuery := `
		SELECT url, title, image_url, location, price, price_text, utilities_included, utilities_match
		FROM search_run_listings
		WHERE search_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, listingsQuery, id)
	if err != nil {
		repoLogger.Error("Failed to query listings", err, nil)
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}

	result.Listings, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ListingRecord, error) {
		var l domain.ListingRecord
		var match string
		err := row.Scan(&l.URL, &l.Title, &l.ImageURL, &l.Location, &l.Price, &l.PriceText, &l.UtilitiesIncluded, &match)
		l.UtilitiesMatch = domain.MatchStrategy(match)
		return l, err
	})
	if err != nil {
		repoLogger.Error("Failed to scan listings", err, nil)
		return nil, fmt.Errorf("failed to scan listings: %w", err)
	}

	repoLogger.Debug("Search run found", port.Fields{"listings": len(result.Listings)})
	return result, nil
}
