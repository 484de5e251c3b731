package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/CrumleyG/dataklinik-bot/internal/model"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Имена колонок в таблице записей
const (
	fieldDate    = "Дата записи"
	fieldTime    = "Время"
	fieldService = "Услуга"
	fieldName    = "Клиент"
	fieldPhone   = "Телефон"
	fieldStatus  = "Статус"
	fieldChatID  = "Chat ID"
)

// Store адаптер строкового хранилища Airtable. Записи адресуются
// идентификатором record, который выдаёт сам Airtable.
type Store struct {
	httpClient *http.Client
	token      string
	tableURL   string
}

// New создаёт клиент для таблицы baseID/tableName
func New(token, baseID, tableName string) *Store {
	return NewWithBaseURL(defaultBaseURL, token, baseID, tableName)
}

// NewWithBaseURL создаёт клиент с нестандартным адресом API (для тестов)
func NewWithBaseURL(baseURL, token, baseID, tableName string) *Store {
	return &Store{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		token:      token,
		tableURL:   fmt.Sprintf("%s/%s/%s", baseURL, baseID, url.PathEscape(tableName)),
	}
}

type record struct {
	ID          string            `json:"id,omitempty"`
	Fields      map[string]string `json:"fields"`
	CreatedTime time.Time         `json:"createdTime,omitempty"`
}

type recordList struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// recordPayload тело запроса на запись: Airtable принимает только fields
type recordPayload struct {
	Fields map[string]string `json:"fields"`
}

// Append добавляет строку с записью. Идентификатор строки выдаёт
// Airtable, он записывается обратно в booking.ID.
func (s *Store) Append(ctx context.Context, booking *model.Booking) error {
	payload := recordPayload{
		Fields: map[string]string{
			fieldDate:    booking.Date,
			fieldTime:    booking.Time,
			fieldService: booking.Service,
			fieldName:    booking.Name,
			fieldPhone:   booking.Phone,
			fieldStatus:  booking.Status,
			fieldChatID:  strconv.FormatInt(booking.ChatID, 10),
		},
	}

	var created record
	if err := s.do(ctx, http.MethodPost, s.tableURL, payload, &created); err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	booking.ID = created.ID
	if !created.CreatedTime.IsZero() {
		booking.CreatedAt = created.CreatedTime
	}
	return nil
}

// All возвращает все строки таблицы, следуя за пагинацией
func (s *Store) All(ctx context.Context) ([]*model.Booking, error) {
	var bookings []*model.Booking
	offset := ""

	for {
		reqURL := s.tableURL
		if offset != "" {
			reqURL += "?offset=" + url.QueryEscape(offset)
		}

		var page recordList
		if err := s.do(ctx, http.MethodGet, reqURL, nil, &page); err != nil {
			return nil, fmt.Errorf("list rows: %w", err)
		}

		for _, rec := range page.Records {
			bookings = append(bookings, recordToBooking(rec))
		}

		if page.Offset == "" {
			return bookings, nil
		}
		offset = page.Offset
	}
}

// ByDate возвращает строки с указанной датой. Фильтруем на своей
// стороне: объём таблицы маленький, формулы Airtable не нужны.
func (s *Store) ByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*model.Booking
	for _, b := range all {
		if b.Date == date {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// LastByChat возвращает последнюю по времени создания запись чата
func (s *Store) LastByChat(ctx context.Context, chatID int64) (*model.Booking, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	var last *model.Booking
	for _, b := range all {
		if b.ChatID != chatID {
			continue
		}
		if last == nil || b.CreatedAt.After(last.CreatedAt) {
			last = b
		}
	}
	return last, nil
}

// UpdateTime меняет ячейку времени одной строки
func (s *Store) UpdateTime(ctx context.Context, id string, newTime string) error {
	payload := recordPayload{
		Fields: map[string]string{fieldTime: newTime},
	}

	if err := s.do(ctx, http.MethodPatch, s.tableURL+"/"+id, payload, nil); err != nil {
		return fmt.Errorf("update row %s: %w", id, err)
	}
	return nil
}

// Delete удаляет строку
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.do(ctx, http.MethodDelete, s.tableURL+"/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete row %s: %w", id, err)
	}
	return nil
}

func (s *Store) do(ctx context.Context, method, reqURL string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("airtable request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("airtable status %d: %s", resp.StatusCode, raw)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func recordToBooking(rec record) *model.Booking {
	chatID, _ := strconv.ParseInt(rec.Fields[fieldChatID], 10, 64)
	return &model.Booking{
		ID:        rec.ID,
		ChatID:    chatID,
		Name:      rec.Fields[fieldName],
		Phone:     rec.Fields[fieldPhone],
		Service:   rec.Fields[fieldService],
		Date:      rec.Fields[fieldDate],
		Time:      rec.Fields[fieldTime],
		Status:    rec.Fields[fieldStatus],
		CreatedAt: rec.CreatedTime,
	}
}
