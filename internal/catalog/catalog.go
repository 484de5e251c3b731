package catalog

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Service одна услуга клиники из статического каталога
type Service struct {
	Key     string   `mapstructure:"key"`
	Name    string   `mapstructure:"name"`
	Price   string   `mapstructure:"price"`
	Aliases []string `mapstructure:"aliases"`
	Slots   []string `mapstructure:"slots"` // ЧЧ:ММ, в порядке приёма
}

// Catalog неизменяемый каталог услуг, загружается один раз на старте
type Catalog struct {
	services []Service
}

// Load читает каталог из YAML-файла. Пустой каталог считается ошибкой
// конфигурации: боту нечего предлагать клиенту.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var services []Service
	if err := v.UnmarshalKey("services", &services); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("catalog %s contains no services", path)
	}

	for _, s := range services {
		if s.Name == "" {
			return nil, fmt.Errorf("catalog %s: service %q has no name", path, s.Key)
		}
		if len(s.Slots) == 0 {
			return nil, fmt.Errorf("catalog %s: service %q has no slots", path, s.Key)
		}
	}

	return &Catalog{services: services}, nil
}

// New собирает каталог из готового списка (используется в тестах)
func New(services []Service) *Catalog {
	return &Catalog{services: services}
}

// List возвращает услуги в порядке каталога
func (c *Catalog) List() []Service {
	return c.services
}

// FindByOrdinal возвращает услугу по номеру в списке (нумерация с 1)
func (c *Catalog) FindByOrdinal(n int) (Service, bool) {
	if n < 1 || n > len(c.services) {
		return Service{}, false
	}
	return c.services[n-1], true
}

// FindByText ищет услугу в свободном тексте. Точное совпадение названия
// или алиаса всегда важнее вхождения подстроки, иначе короткий алиас
// ложно срабатывает внутри несвязанного слова.
func (c *Catalog) FindByText(text string) (Service, bool) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return Service{}, false
	}

	// Точное совпадение всего текста с названием или алиасом
	for _, s := range c.services {
		if lowered == strings.ToLower(s.Name) {
			return s, true
		}
		for _, alias := range s.Aliases {
			if lowered == strings.ToLower(alias) {
				return s, true
			}
		}
	}

	// Название или алиас как отдельное слово внутри текста
	words := strings.FieldsFunc(lowered, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	})
	for _, s := range c.services {
		for _, w := range words {
			if w == strings.ToLower(s.Name) {
				return s, true
			}
			for _, alias := range s.Aliases {
				if w == strings.ToLower(alias) {
					return s, true
				}
			}
		}
	}

	// Последний шанс: вхождение подстроки
	for _, s := range c.services {
		if strings.Contains(lowered, strings.ToLower(s.Name)) {
			return s, true
		}
		for _, alias := range s.Aliases {
			if strings.Contains(lowered, strings.ToLower(alias)) {
				return s, true
			}
		}
	}

	return Service{}, false
}
