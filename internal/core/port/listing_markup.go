package port

import "bayut-parser-service/internal/core/domain"

// ListingMarkupPort извлекает данные из разметки страниц по схеме страницы
type ListingMarkupPort interface {
	// SplitFragments делит страницу выдачи на карточки объявлений
	SplitFragments(page []byte) ([]domain.ListingFragment, error)

	// ParseFragment достает "сырые" поля карточки: ссылку, заголовок, картинку, локацию и текст цены.
	// Price не заполняется, обязательность полей проверяет вызывающий.
	ParseFragment(fragment domain.ListingFragment) (*domain.ListingRecord, error)

	// ExtractDescription достает текст описания со страницы объявления
	ExtractDescription(page []byte) (string, error)
}
