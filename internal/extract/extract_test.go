package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrumleyG/dataklinik-bot/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Service{
		{Key: "cleaning", Name: "Чистка", Price: "3500 руб.", Aliases: []string{"чистку", "гигиена"}, Slots: []string{"10:00", "14:00"}},
		{Key: "whitening", Name: "Отбеливание", Price: "8000 руб.", Slots: []string{"11:00", "15:00"}},
	})
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func newTestExtractor(opts ...Option) *Extractor {
	opts = append(opts, WithNow(fixedNow))
	return New(testCatalog(), opts...)
}

func TestExtractTime(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"colon separator", "запишите на 14:30 пожалуйста", "14:30"},
		{"leading zero added", "в 9:05 удобно", "09:05"},
		{"dot after predlog", "приду в 14.00", "14:00"},
		{"dash after predlog", "в 10-30", "10:30"},
		{"midnight", "хоть в 0:00", "00:00"},
		{"hour out of range", "в 24:00 не бывает", ""},
		{"hour far out of range", "25:30", ""},
		{"minute out of range", "14:60", ""},
		{"bare dot pair is not time", "жду 14.05", ""},
		{"no time at all", "хочу записаться", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTime(tt.text))
		})
	}
}

func TestExtractDate(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"today", "хочу сегодня", "29.08.2026"},
		{"tomorrow", "давайте завтра", "30.08.2026"},
		{"day after tomorrow", "лучше послезавтра", "31.08.2026"},
		{"explicit full date", "запишите на 03.09.2026", "03.09.2026"},
		{"two digit year", "на 03.09.26", "03.09.2026"},
		{"missing year uses current", "на 05.09", "05.09.2026"},
		{"slash separator", "на 05/09", "05.09.2026"},
		{"month out of range", "цифры 14.25 не дата", ""},
		{"time with predlog is not date", "в 14.05 приду", ""},
		{"colon time is not date", "в 14:05", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text).Date)
		})
	}
}

func TestExtractPhone(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"international", "мой номер +71234567890", "+71234567890"},
		{"trunk prefix normalized", "звоните 81234567890", "+71234567890"},
		{"bare seven starts plus", "телефон 71234567890", "+71234567890"},
		{"short local number kept as is", "тел 1234567", "1234567"},
		{"longest digit run wins", "кабинет 12, номер +79991234567", "+79991234567"},
		{"too short ignored", "встреча в 123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text).Phone)
		})
	}
}

func TestExtractName(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"menya zovut", "Меня зовут Мария", "Мария"},
		{"zovut", "зовут Пётр", "Пётр"},
		{"ya", "я Анна, хочу записаться", "Анна"},
		{"english trigger", "my name is Alice", "Alice"},
		{"lowercase name rejected", "меня зовут мария", ""},
		{"no trigger no name", "хочу чистку", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text).Name)
		})
	}
}

func TestExtractNameFallback(t *testing.T) {
	withFallback := newTestExtractor(WithNameFallback())
	without := newTestExtractor()

	// Одинокое слово с заглавной буквы принимается только с флагом
	assert.Equal(t, "Мария", withFallback.Extract("Мария").Name)
	assert.Equal(t, "", without.Extract("Мария").Name)

	// Слово внутри осмысленной фразы fallback не трогает
	assert.Equal(t, "", withFallback.Extract("Хочу записаться завтра").Name)
}

func TestExtractService(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"alias match", "хочу чистку завтра", "Чистка"},
		{"exact name", "Отбеливание", "Отбеливание"},
		{"case insensitive", "записаться на ОТБЕЛИВАНИЕ", "Отбеливание"},
		{"ordinal picks second entry", "2", "Отбеливание"},
		{"ordinal out of range", "9", ""},
		{"unknown service", "хочу массаж", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text).Service)
		})
	}
}

func TestExtractCombined(t *testing.T) {
	e := newTestExtractor()

	update := e.Extract("Я Мария, хочу чистку завтра в 14:00, телефон +71234567890")

	require.False(t, update.Empty())
	assert.Equal(t, "Мария", update.Name)
	assert.Equal(t, "Чистка", update.Service)
	assert.Equal(t, "30.08.2026", update.Date)
	assert.Equal(t, "14:00", update.Time)
	assert.Equal(t, "+71234567890", update.Phone)
}

func TestExtractNeverErrors(t *testing.T) {
	e := newTestExtractor()

	// Мусорные сообщения просто дают пустой апдейт
	for _, text := range []string{"", "???", "🙂🙂🙂", "в в в", "99.99.9999 в 99:99"} {
		update := e.Extract(text)
		assert.True(t, update.Empty(), "text %q", text)
	}
}
