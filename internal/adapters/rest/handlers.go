package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bayut-parser-service/internal/constants"
	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"
	usecases_port "bayut-parser-service/internal/core/port/usecases"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type SearchHandlers struct {
	runSearchUC usecases_port.RunSearchPort
	getSearchUC usecases_port.GetSearchPort
	classifier  port.TextClassifierPort
}

func NewSearchHandlers(runSearchUC usecases_port.RunSearchPort, getSearchUC usecases_port.GetSearchPort, classifier port.TextClassifierPort) *SearchHandlers {
	return &SearchHandlers{
		runSearchUC: runSearchUC,
		getSearchUC: getSearchUC,
		classifier:  classifier,
	}
}

// decodeBody пишет ответ 400 сам и возвращает false, если тело не разобрано
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, logger port.LoggerPort) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			logger.Warn("Empty request body", nil)
			WriteJSONError(w, http.StatusBadRequest, "Request body is empty")
			return false
		}
		logger.Warn("Failed to decode request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// HandleRunSearch - POST /api/v1/searches. Поиск выполняется синхронно.
func (h *SearchHandlers) HandleRunSearch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleRunSearch"})

	var reqDTO SearchRequestDTO
	if !decodeBody(w, r, &reqDTO, logger) {
		return
	}

	if reqDTO.MaxPages == 0 {
		reqDTO.MaxPages = constants.DefaultMaxPages
	}
	if reqDTO.MaxPages > constants.MaxPagesLimit {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Field 'max_pages' must not exceed %d", constants.MaxPagesLimit))
		return
	}

	filters, err := domain.NewSearchFilters(reqDTO.Location, reqDTO.MinPrice, reqDTO.MaxPrice, reqDTO.Rooms, reqDTO.Baths, reqDTO.CheckBillsIncluded, reqDTO.MaxPages)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	searchLogger := logger.WithFields(port.Fields{
		"emirate":   filters.Emirate,
		"area":      filters.Area,
		"max_price": filters.MaxPrice,
		"max_pages": filters.MaxPages,
	})
	searchLogger.Info("Received search request", nil)

	result, err := h.runSearchUC.Execute(contextkeys.ContextWithLogger(r.Context(), searchLogger), filters, uuid.Nil)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFilters) {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		searchLogger.Error("Search failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	searchLogger.Info("Search finished", port.Fields{"search_id": result.ID.String(), "listings": len(result.Listings)})
	RespondWithJSON(w, http.StatusOK, ToSearchResponse(result))
}

// HandleGetSearch - GET /api/v1/searches/{id}
func (h *SearchHandlers) HandleGetSearch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleGetSearch"})

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid search id")
		return
	}

	result, err := h.getSearchUC.Execute(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrSearchNotFound):
		WriteJSONError(w, http.StatusNotFound, "Search not found")
		return
	case errors.Is(err, domain.ErrHistoryUnavailable):
		WriteJSONError(w, http.StatusServiceUnavailable, "Search history is not configured")
		return
	case err != nil:
		logger.Error("Failed to load search", err, port.Fields{"search_id": id.String()})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to load search")
		return
	}

	RespondWithJSON(w, http.StatusOK, ToSearchResponse(result))
}

// HandleClassify - POST /api/v1/classify, диагностика словаря
func (h *SearchHandlers) HandleClassify(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleClassify"})

	var reqDTO ClassifyRequestDTO
	if !decodeBody(w, r, &reqDTO, logger) {
		return
	}

	res := h.classifier.Classify(reqDTO.Text)
	RespondWithJSON(w, http.StatusOK, ClassifyResponseDTO{
		Matched:  res.Matched,
		Strategy: string(res.Strategy),
		Score:    res.Score,
		Phrase:   res.Phrase,
	})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
