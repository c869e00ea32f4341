package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"bayut-parser-service/internal/constants"
	"bayut-parser-service/internal/contextkeys"
	"bayut-parser-service/internal/contracts"
	"bayut-parser-service/internal/core/domain"
	"bayut-parser-service/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	routingKey string
	msg        amqp.Publishing
}

type fakePublisher struct {
	sent []sentMessage
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{routingKey: routingKey, msg: msg})
	return nil
}

type fakeRunSearch struct {
	calls   []domain.SearchFilters
	taskIDs []uuid.UUID
	err     error
}

func (f *fakeRunSearch) Execute(ctx context.Context, filters domain.SearchFilters, taskID uuid.UUID) (*domain.SearchResult, error) {
	f.calls = append(f.calls, filters)
	f.taskIDs = append(f.taskIDs, taskID)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SearchResult{ID: uuid.New()}, nil
}

func testResult() *domain.SearchResult {
	return &domain.SearchResult{
		ID: uuid.New(),
		Listings: []domain.ListingRecord{
			{URL: "https://www.bayut.com/property/details-1.html", Title: "Flat", Price: 85000, PriceText: "85,000", UtilitiesIncluded: true, UtilitiesMatch: domain.StrategyFuzzy},
			{URL: "https://www.bayut.com/property/details-2.html", Price: 70000},
		},
		Report: domain.SearchReport{PagesFetched: 2, FragmentsSeen: 5, RejectedByPrice: 3},
	}
}

func noopLogger() port.LoggerPort {
	return contextkeys.LoggerFromContext(context.Background())
}

func TestListingsPublisherAdapter(t *testing.T) {
	producer := &fakePublisher{}
	adapter, err := NewListingsPublisherAdapter(producer, constants.RoutingKeyListingsFound)
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-42")
	result := testResult()
	taskID := uuid.New()
	require.NoError(t, adapter.PublishListings(ctx, result, taskID))

	require.Len(t, producer.sent, 1)
	sent := producer.sent[0]
	assert.Equal(t, constants.RoutingKeyListingsFound, sent.routingKey)
	assert.Equal(t, "trace-42", sent.msg.Headers[constants.HeaderTraceID])
	assert.Equal(t, contracts.ListingsFoundEvent, sent.msg.Headers[constants.HeaderEventType])
	assert.NoError(t, contracts.ValidateEvent(contracts.ListingsFoundEvent, contracts.Version1, sent.msg.Body))

	var dto ListingsFoundDTO
	require.NoError(t, json.Unmarshal(sent.msg.Body, &dto))
	assert.Equal(t, result.ID, dto.SearchID)
	assert.Equal(t, taskID.String(), dto.TaskID)
	require.Len(t, dto.Listings, 2)
	assert.Equal(t, "fuzzy", dto.Listings[0].UtilitiesMatch)
	assert.Equal(t, "none", dto.Listings[1].UtilitiesMatch)
}

func TestListingsPublisherAdapterWithoutTask(t *testing.T) {
	producer := &fakePublisher{}
	adapter, err := NewListingsPublisherAdapter(producer, constants.RoutingKeyListingsFound)
	require.NoError(t, err)

	require.NoError(t, adapter.PublishListings(context.Background(), testResult(), uuid.Nil))
	assert.NotContains(t, string(producer.sent[0].msg.Body), "task_id")
	assert.NoError(t, contracts.ValidateEvent(contracts.ListingsFoundEvent, contracts.Version1, producer.sent[0].msg.Body))
}

func TestListingsPublisherAdapterFailure(t *testing.T) {
	adapter, err := NewListingsPublisherAdapter(&fakePublisher{err: errors.New("closed")}, "key")
	require.NoError(t, err)
	assert.Error(t, adapter.PublishListings(context.Background(), testResult(), uuid.Nil))

	_, err = NewListingsPublisherAdapter(nil, "key")
	assert.Error(t, err)
	_, err = NewListingsPublisherAdapter(&fakePublisher{}, "")
	assert.Error(t, err)
}

func TestTaskReporterAdapter(t *testing.T) {
	producer := &fakePublisher{}
	adapter, err := NewTaskReporterAdapter(producer, constants.RoutingKeyTaskResults)
	require.NoError(t, err)

	taskID := uuid.New()
	result := testResult()
	result.Report.Aborted = true
	require.NoError(t, adapter.ReportResults(context.Background(), taskID, result))

	var dto TaskResultDTO
	require.NoError(t, json.Unmarshal(producer.sent[0].msg.Body, &dto))
	assert.Equal(t, taskID, dto.TaskID)
	assert.Equal(t, 2, dto.Results["listings_found"])
	assert.Equal(t, 2, dto.Results["pages_fetched"])
	assert.Equal(t, 3, dto.Results["rejected_by_price"])
	assert.Equal(t, 1, dto.Results["aborted"])
	assert.NotContains(t, producer.sent[0].msg.Headers, constants.HeaderEventType)
}

func TestSearchTaskHandler(t *testing.T) {
	taskID := uuid.New()
	validBody := `{"task_id": "` + taskID.String() + `", "location": "Dubai, Dubai Marina", "max_price": 90000, "rooms": "2", "baths": 2, "check_bills_included": true}`

	t.Run("valid task runs search", func(t *testing.T) {
		uc := &fakeRunSearch{}
		a := &SearchTasksConsumerAdapter{runSearchUC: uc, logger: noopLogger()}

		err := a.messageHandler(amqp.Delivery{Body: []byte(validBody), Headers: amqp.Table{constants.HeaderTraceID: "t-1"}})
		require.NoError(t, err)
		require.Len(t, uc.calls, 1)
		f := uc.calls[0]
		assert.Equal(t, "dubai", f.Emirate)
		assert.Equal(t, "dubai-marina", f.Area)
		assert.Equal(t, 90000, f.MaxPrice)
		assert.Equal(t, constants.DefaultMaxPages, f.MaxPages)
		assert.True(t, f.RequireUtilitiesIncluded)
		assert.Equal(t, taskID, uc.taskIDs[0])
	})

	t.Run("contract violation is dropped", func(t *testing.T) {
		uc := &fakeRunSearch{}
		a := &SearchTasksConsumerAdapter{runSearchUC: uc, logger: noopLogger()}

		err := a.messageHandler(amqp.Delivery{Body: []byte(`{"location": "Dubai"}`)})
		assert.NoError(t, err)
		assert.Empty(t, uc.calls)
	})

	t.Run("min above max is dropped", func(t *testing.T) {
		uc := &fakeRunSearch{}
		a := &SearchTasksConsumerAdapter{runSearchUC: uc, logger: noopLogger()}
		body := `{"task_id": "` + taskID.String() + `", "location": "Dubai, Marina", "min_price": 5, "max_price": 1, "rooms": "2", "baths": 1}`

		assert.NoError(t, a.messageHandler(amqp.Delivery{Body: []byte(body)}))
		assert.Empty(t, uc.calls)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		uc := &fakeRunSearch{err: errors.New("context deadline exceeded")}
		a := &SearchTasksConsumerAdapter{runSearchUC: uc, logger: noopLogger()}
		assert.Error(t, a.messageHandler(amqp.Delivery{Body: []byte(validBody)}))
	})

	t.Run("invalid filters from use case are dropped", func(t *testing.T) {
		uc := &fakeRunSearch{err: domain.ErrInvalidFilters}
		a := &SearchTasksConsumerAdapter{runSearchUC: uc, logger: noopLogger()}
		assert.NoError(t, a.messageHandler(amqp.Delivery{Body: []byte(validBody)}))
	})
}

func TestPkgLoggerBridgeFields(t *testing.T) {
	b := &PkgLoggerBridge{}
	fields := b.toFields("queue", "search_tasks_bayut", 7, "x", "dangling")
	assert.Equal(t, port.Fields{"queue": "search_tasks_bayut", "7": "x", "dangling": nil}, fields)
}
