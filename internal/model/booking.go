package model

import "time"

// StatusNew статус, с которым создаётся каждая новая запись
const StatusNew = "Новая"

// Booking подтверждённая запись клиента в клинику
type Booking struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Service   string    `json:"service"`
	Date      string    `json:"date"` // ДД.ММ.ГГГГ
	Time      string    `json:"time"` // ЧЧ:ММ
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
