package rabbitmq

import (
	"bayut-parser-service/internal/constants"
	"bayut-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

// SearchTaskDTO - входящая задача поиска (контракт SearchTaskEvent)
type SearchTaskDTO struct {
	TaskID             uuid.UUID `json:"task_id"`
	Location           string    `json:"location"`
	MinPrice           int       `json:"min_price"`
	MaxPrice           int       `json:"max_price"`
	Rooms              string    `json:"rooms"`
	Baths              int       `json:"baths"`
	CheckBillsIncluded bool      `json:"check_bills_included"`
	MaxPages           int       `json:"max_pages,omitempty"`
}

// ToFilters переводит задачу во внутренние фильтры
func (dto SearchTaskDTO) ToFilters() (domain.SearchFilters, error) {
	maxPages := dto.MaxPages
	if maxPages == 0 {
		maxPages = constants.DefaultMaxPages
	}
	filters, err := domain.NewSearchFilters(dto.Location, dto.MinPrice, dto.MaxPrice, dto.Rooms, dto.Baths, dto.CheckBillsIncluded, maxPages)
	if err != nil {
		return domain.SearchFilters{}, err
	}
	if err := filters.Validate(); err != nil {
		return domain.SearchFilters{}, err
	}
	return filters, nil
}

// ListingsFoundDTO - исходящее событие ListingsFoundEvent
type ListingsFoundDTO struct {
	SearchID uuid.UUID    `json:"search_id"`
	TaskID   string       `json:"task_id,omitempty"`
	Source   string       `json:"source"`
	Listings []ListingDTO `json:"listings"`
}

type ListingDTO struct {
	URL               string `json:"url"`
	Title             string `json:"title,omitempty"`
	ImageURL          string `json:"image_url,omitempty"`
	Location          string `json:"location,omitempty"`
	Price             int    `json:"price"`
	PriceText         string `json:"price_text,omitempty"`
	UtilitiesIncluded bool   `json:"utilities_included"`
	UtilitiesMatch    string `json:"utilities_match"`
}

func newListingsFoundDTO(result *domain.SearchResult, taskID uuid.UUID) ListingsFoundDTO {
	dto := ListingsFoundDTO{
		SearchID: result.ID,
		Source:   constants.Source,
		Listings: make([]ListingDTO, 0, len(result.Listings)),
	}
	if taskID != uuid.Nil {
		dto.TaskID = taskID.String()
	}
	for _, l := range result.Listings {
		match := l.UtilitiesMatch
		if match == "" {
			match = domain.StrategyNone
		}
		dto.Listings = append(dto.Listings, ListingDTO{
			URL:               l.URL,
			Title:             l.Title,
			ImageURL:          l.ImageURL,
			Location:          l.Location,
			Price:             l.Price,
			PriceText:         l.PriceText,
			UtilitiesIncluded: l.UtilitiesIncluded,
			UtilitiesMatch:    string(match),
		})
	}
	return dto
}

// TaskResultDTO - отчет о задаче для task-service
type TaskResultDTO struct {
	TaskID  uuid.UUID      `json:"task_id"`
	Results map[string]int `json:"results"`
}

func newTaskResultDTO(taskID uuid.UUID, result *domain.SearchResult) TaskResultDTO {
	r := result.Report
	aborted := 0
	if r.Aborted {
		aborted = 1
	}
	return TaskResultDTO{
		TaskID: taskID,
		Results: map[string]int{
			"pages_fetched":         r.PagesFetched,
			"fragments_seen":        r.FragmentsSeen,
			"listings_found":        len(result.Listings),
			"parse_failures":        r.ParseFailures,
			"rejected_by_price":     r.RejectedByPrice,
			"rejected_by_utilities": r.RejectedByUtilities,
			"detail_fetch_failures": r.DetailFetchFailures,
			"aborted":               aborted,
		},
	}
}
