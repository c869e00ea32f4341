package port

import "context"

// PageFetcherPort загружает HTML-страницы сайта.
// Реализация сама выдерживает паузу перед каждым запросом.
type PageFetcherPort interface {
	FetchPage(ctx context.Context, pageURL string) ([]byte, error)
}
