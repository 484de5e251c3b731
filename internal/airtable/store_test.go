package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrumleyG/dataklinik-bot/internal/model"
)

func testBooking() *model.Booking {
	return &model.Booking{
		ChatID:  100500,
		Name:    "Мария",
		Phone:   "+71234567890",
		Service: "Чистка",
		Date:    "30.08.2026",
		Time:    "14:00",
		Status:  model.StatusNew,
	}
}

func TestAppendPostsRowAndKeepsRecordID(t *testing.T) {
	var gotAuth string
	var gotBody record

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/base1/bookings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(record{
			ID:          "rec123",
			Fields:      gotBody.Fields,
			CreatedTime: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		})
	}))
	defer server.Close()

	store := NewWithBaseURL(server.URL, "secret-token", "base1", "bookings")

	booking := testBooking()
	require.NoError(t, store.Append(context.Background(), booking))

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "rec123", booking.ID)
	assert.Equal(t, "Мария", gotBody.Fields["Клиент"])
	assert.Equal(t, "14:00", gotBody.Fields["Время"])
	assert.Equal(t, "30.08.2026", gotBody.Fields["Дата записи"])
	assert.Equal(t, "Новая", gotBody.Fields["Статус"])
	assert.Equal(t, "100500", gotBody.Fields["Chat ID"])
	assert.Equal(t, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC), booking.CreatedAt)
}

func TestAllFollowsPagination(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		calls++

		if r.URL.Query().Get("offset") == "" {
			json.NewEncoder(w).Encode(recordList{
				Records: []record{{ID: "rec1", Fields: map[string]string{"Клиент": "Мария", "Chat ID": "1"}}},
				Offset:  "page2",
			})
			return
		}
		json.NewEncoder(w).Encode(recordList{
			Records: []record{{ID: "rec2", Fields: map[string]string{"Клиент": "Пётр", "Chat ID": "2"}}},
		})
	}))
	defer server.Close()

	store := NewWithBaseURL(server.URL, "t", "base1", "bookings")

	bookings, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Мария", bookings[0].Name)
	assert.Equal(t, int64(2), bookings[1].ChatID)
}

func TestLastByChatPicksNewest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recordList{Records: []record{
			{ID: "old", Fields: map[string]string{"Chat ID": "7"}, CreatedTime: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "new", Fields: map[string]string{"Chat ID": "7"}, CreatedTime: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
			{ID: "other", Fields: map[string]string{"Chat ID": "8"}, CreatedTime: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)},
		}})
	}))
	defer server.Close()

	store := NewWithBaseURL(server.URL, "t", "base1", "bookings")

	booking, err := store.LastByChat(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, "new", booking.ID)

	booking, err = store.LastByChat(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, booking)
}

func TestByDateFiltersRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recordList{Records: []record{
			{ID: "a", Fields: map[string]string{"Дата записи": "30.08.2026"}},
			{ID: "b", Fields: map[string]string{"Дата записи": "31.08.2026"}},
		}})
	}))
	defer server.Close()

	store := NewWithBaseURL(server.URL, "t", "base1", "bookings")

	bookings, err := store.ByDate(context.Background(), "30.08.2026")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "a", bookings[0].ID)
}

func TestUpdateTimePatchesSingleCell(t *testing.T) {
	var gotBody record

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/base1/bookings/rec123", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := NewWithBaseURL(server.URL, "t", "base1", "bookings")

	require.NoError(t, store.UpdateTime(context.Background(), "rec123", "15:00"))
	assert.Equal(t, map[string]string{"Время": "15:00"}, gotBody.Fields)
}

func TestDeleteRemovesRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/base1/bookings/rec123", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := NewWithBaseURL(server.URL, "t", "base1", "bookings")

	assert.NoError(t, store.Delete(context.Background(), "rec123"))
}

func TestErrorStatusSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"INVALID_PERMISSIONS"}`, http.StatusForbidden)
	}))
	defer server.Close()

	store := NewWithBaseURL(server.URL, "t", "base1", "bookings")

	err := store.Append(context.Background(), testBooking())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
