package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/CrumleyG/dataklinik-bot/internal/catalog"
	"github.com/CrumleyG/dataklinik-bot/internal/model"
)

// Формат дат и времени во всех анкетах и записях
const (
	DateLayout = "02.01.2006"
	TimeLayout = "15:04"
)

var (
	nameRe = regexp.MustCompile(`(?:^|[\s,])(?i:меня зовут|зовут|my name is|i am|i'm|call me|я)\s+([А-ЯЁA-Z][а-яёa-z]+)`)
	// Одинокое слово с заглавной буквы, опциональный fallback для имени
	bareNameRe = regexp.MustCompile(`^([А-ЯЁA-Z][а-яёa-z]+)$`)

	phoneRe = regexp.MustCompile(`\+?\d{7,15}`)

	// ДД.ММ[.ГГГГ], ДД/ММ[/ГГГГ], ДД-ММ[-ГГГГ]
	dateRe = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})(?:[./-](\d{2,4}))?`)

	timeColonRe = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	// Точка и дефис считаются разделителем времени только после «в»/«at»,
	// иначе «14.05» неотличимо от даты 14 мая
	timeDotRe = regexp.MustCompile(`(?:^|[\s,])(?i:в|at)\s+(\d{1,2})[.\-](\d{2})\b`)
)

var relativeDays = []struct {
	word string
	days int
}{
	// «послезавтра» раньше «завтра»: второе содержится в первом
	{"послезавтра", 2},
	{"day after tomorrow", 2},
	{"завтра", 1},
	{"tomorrow", 1},
	{"сегодня", 0},
	{"today", 0},
}

// Extractor извлекает поля анкеты из свободного текста клиента.
// Каждое поле ищется независимо; если фрагмент не распознан, поле
// просто остаётся пустым, ошибок экстрактор не возвращает.
type Extractor struct {
	catalog      *catalog.Catalog
	nameFallback bool             // принимать одинокое слово с заглавной буквы как имя
	now          func() time.Time // подменяется в тестах
}

// Option настройка экстрактора
type Option func(*Extractor)

// WithNameFallback включает распознавание одинокого слова с заглавной
// буквы как имени. По умолчанию выключено: слишком легко принять за имя
// приветствие или название услуги.
func WithNameFallback() Option {
	return func(e *Extractor) { e.nameFallback = true }
}

// WithNow подменяет источник текущего времени (для тестов)
func WithNow(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New создаёт экстрактор поверх каталога услуг
func New(cat *catalog.Catalog, opts ...Option) *Extractor {
	e := &Extractor{
		catalog: cat,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract делает один проход по сообщению и возвращает найденные поля
func (e *Extractor) Extract(text string) model.Update {
	return model.Update{
		Name:    e.extractName(text),
		Phone:   extractPhone(text),
		Service: e.extractService(text),
		Date:    e.extractDate(text),
		Time:    ExtractTime(text),
	}
}

func (e *Extractor) extractName(text string) string {
	if m := nameRe.FindStringSubmatch(text); m != nil {
		return capitalize(m[1])
	}
	if e.nameFallback {
		if m := bareNameRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
			return capitalize(m[1])
		}
	}
	return ""
}

func extractPhone(text string) string {
	// Самая длинная цифровая последовательность: короткие обрывки
	// вроде номера дома отсеиваются сами
	var best string
	for _, m := range phoneRe.FindAllString(text, -1) {
		if len(m) > len(best) {
			best = m
		}
	}
	if best == "" {
		return ""
	}
	return normalizePhone(best)
}

// normalizePhone приводит номер к международному виду: ведущая 8 в
// одиннадцатизначном номере заменяется на +7
func normalizePhone(phone string) string {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) == 11 && strings.HasPrefix(digits, "8") {
		return "+7" + digits[1:]
	}
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "7") {
		return "+" + digits
	}
	return phone
}

func (e *Extractor) extractService(text string) string {
	trimmed := strings.TrimSpace(text)

	// Явный номер из списка услуг: «2» выбирает вторую позицию каталога
	if n, err := strconv.Atoi(trimmed); err == nil {
		if svc, ok := e.catalog.FindByOrdinal(n); ok {
			return svc.Name
		}
		return ""
	}

	if svc, ok := e.catalog.FindByText(text); ok {
		return svc.Name
	}
	return ""
}

func (e *Extractor) extractDate(text string) string {
	lowered := strings.ToLower(text)
	for _, rel := range relativeDays {
		if strings.Contains(lowered, rel.word) {
			return e.now().AddDate(0, 0, rel.days).Format(DateLayout)
		}
	}

	// Совпадения вида «в 14.05» уже распознаны как время, датой их не считаем
	timeSpans := timeDotRe.FindAllStringIndex(text, -1)

	for _, idx := range dateRe.FindAllStringSubmatchIndex(text, -1) {
		if insideAny(idx[0], timeSpans) {
			continue
		}

		m := dateRe.FindStringSubmatch(text[idx[0]:idx[1]])
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day < 1 || day > 31 || month < 1 || month > 12 {
			continue
		}

		year := e.now().Year()
		if m[3] != "" {
			y, _ := strconv.Atoi(m[3])
			if y < 100 {
				// Двузначный год трактуем как текущий век
				y += 2000
			}
			year = y
		}

		return fmt.Sprintf("%02d.%02d.%04d", day, month, year)
	}
	return ""
}

func insideAny(pos int, spans [][]int) bool {
	for _, span := range spans {
		if pos >= span[0] && pos < span[1] {
			return true
		}
	}
	return false
}

// ExtractTime находит время ЧЧ:ММ в тексте. Час обязан быть 0–23,
// минута 0–59, иначе совпадение отбрасывается.
func ExtractTime(text string) string {
	for _, re := range []*regexp.Regexp{timeColonRe, timeDotRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			hour, _ := strconv.Atoi(m[1])
			minute, _ := strconv.Atoi(m[2])
			if hour > 23 || minute > 59 {
				continue
			}
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}
	return ""
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
