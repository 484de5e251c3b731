package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CrumleyG/dataklinik-bot/internal/model"
)

// BookingRepository хранит записи в PostgreSQL
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Append создаёт новую запись
func (r *BookingRepository) Append(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (id, chat_id, name, phone, service, date, time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		booking.ID,
		booking.ChatID,
		booking.Name,
		booking.Phone,
		booking.Service,
		booking.Date,
		booking.Time,
		booking.Status,
	).Scan(&booking.CreatedAt)

	if err != nil {
		return fmt.Errorf("append booking: %w", err)
	}

	return nil
}

// All получает все записи
func (r *BookingRepository) All(ctx context.Context) ([]*model.Booking, error) {
	query := `
		SELECT id, chat_id, name, phone, service, date, time, status, created_at
		FROM bookings
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ByDate получает записи на дату
func (r *BookingRepository) ByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	query := `
		SELECT id, chat_id, name, phone, service, date, time, status, created_at
		FROM bookings
		WHERE date = $1
		ORDER BY time ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("get bookings by date: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// LastByChat получает последнюю запись чата
func (r *BookingRepository) LastByChat(ctx context.Context, chatID int64) (*model.Booking, error) {
	query := `
		SELECT id, chat_id, name, phone, service, date, time, status, created_at
		FROM bookings
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var booking model.Booking
	err := r.pool.QueryRow(ctx, query, chatID).Scan(
		&booking.ID,
		&booking.ChatID,
		&booking.Name,
		&booking.Phone,
		&booking.Service,
		&booking.Date,
		&booking.Time,
		&booking.Status,
		&booking.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get last booking by chat: %w", err)
	}

	return &booking, nil
}

// UpdateTime обновляет время записи
func (r *BookingRepository) UpdateTime(ctx context.Context, id string, newTime string) error {
	query := `
		UPDATE bookings
		SET time = $1
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, newTime, id)
	if err != nil {
		return fmt.Errorf("update booking time: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// Delete удаляет запись
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

func scanBookings(rows pgx.Rows) ([]*model.Booking, error) {
	var bookings []*model.Booking
	for rows.Next() {
		var booking model.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.ChatID,
			&booking.Name,
			&booking.Phone,
			&booking.Service,
			&booking.Date,
			&booking.Time,
			&booking.Status,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}
