package model

// Form анкета записи, которую бот постепенно заполняет в диалоге.
// Пустая строка означает, что поле ещё не получено от клиента.
type Form struct {
	Name    string
	Phone   string
	Service string
	Date    string
	Time    string
}

// Поля анкеты в каноническом порядке опроса: сначала услуга и дата,
// потому что от них зависит список свободных слотов.
const (
	FieldService = "service"
	FieldDate    = "date"
	FieldTime    = "time"
	FieldName    = "name"
	FieldPhone   = "phone"
)

// Update результат одного прохода экстрактора по сообщению.
// Непустые поля перезаписывают текущие значения анкеты.
type Update struct {
	Name    string
	Phone   string
	Service string
	Date    string
	Time    string
}

// Empty сообщает, что экстрактор не нашёл ни одного поля
func (u Update) Empty() bool {
	return u.Name == "" && u.Phone == "" && u.Service == "" && u.Date == "" && u.Time == ""
}

// Merge накладывает непустые поля апдейта на анкету
func (f *Form) Merge(u Update) {
	if u.Name != "" {
		f.Name = u.Name
	}
	if u.Phone != "" {
		f.Phone = u.Phone
	}
	if u.Service != "" {
		f.Service = u.Service
	}
	if u.Date != "" {
		f.Date = u.Date
	}
	if u.Time != "" {
		f.Time = u.Time
	}
}

// Missing возвращает незаполненные поля в каноническом порядке
func (f *Form) Missing() []string {
	var missing []string
	if f.Service == "" {
		missing = append(missing, FieldService)
	}
	if f.Date == "" {
		missing = append(missing, FieldDate)
	}
	if f.Time == "" {
		missing = append(missing, FieldTime)
	}
	if f.Name == "" {
		missing = append(missing, FieldName)
	}
	if f.Phone == "" {
		missing = append(missing, FieldPhone)
	}
	return missing
}

// Complete проверяет, что все обязательные поля заполнены
func (f *Form) Complete() bool {
	return len(f.Missing()) == 0
}
