package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewEvent(EventTypeUpdated, EntityTypeLedger, map[string]string{"clientId": "acme"})

	assert.Equal(t, "ledger.updated", event.Type)
	assert.Equal(t, EntityTypeLedger, event.Entity)
	assert.False(t, event.Timestamp.Before(before))
}

func TestStatementArchived(t *testing.T) {
	occurred := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	payload := domain.StatementArchivedEvent{
		EventID:    "evt-1",
		ClientID:   "acme",
		DateFrom:   "2024-04-01",
		DateTo:     "2024-04-30",
		ObjectKey:  "statements/acme/20240401_20240430/x.csv",
		Opening:    decimal.NewFromInt(100),
		Closing:    decimal.RequireFromString("-250.50"),
		OccurredAt: occurred,
	}

	event := StatementArchived(payload)
	assert.Equal(t, "statement.archived", event.Type)
	assert.Equal(t, EntityTypeStatement, event.Entity)
	assert.Equal(t, occurred, event.Timestamp)

	data, err := event.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "statement.archived", decoded["type"])

	body, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "acme", body["clientId"])
	assert.Equal(t, "-250.5", body["closing"])
}

func TestEventFor(t *testing.T) {
	archived := domain.StatementArchivedEvent{ClientID: "acme"}

	assert.Equal(t, "statement.archived", eventFor(archived).Type)
	assert.Equal(t, "statement.archived", eventFor(&archived).Type)
	assert.Equal(t, "ledger.updated", eventFor(map[string]string{"k": "v"}).Type)

	custom := NewEvent(EventTypeArchived, EntityTypeLedger, nil)
	assert.Equal(t, custom, eventFor(custom))
}
