package port

import "bayut-parser-service/internal/core/domain"

type TextClassifierPort interface {
	Classify(text string) domain.ClassificationResult
}
