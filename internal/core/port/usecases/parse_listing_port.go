package usecases_port

import (
	"context"

	"bayut-parser-service/internal/core/domain"
)

type ParseListingPort interface {
	// Parse разбирает карточку без похода на страницу объявления
	Parse(ctx context.Context, fragment domain.ListingFragment) (*domain.ListingRecord, error)

	// ClassifyUtilities загружает страницу объявления и заполняет признак включенных платежей.
	// Возвращает ошибку загрузки только для статистики, запись при этом уже помечена false.
	ClassifyUtilities(ctx context.Context, record *domain.ListingRecord) error

	Execute(ctx context.Context, fragment domain.ListingFragment) (*domain.ListingRecord, error)
}
