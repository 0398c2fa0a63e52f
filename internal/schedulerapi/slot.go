package schedulerapi

import (
	"encoding/json"
	"time"
)

// dateLayout формат дат диапазона поиска
const dateLayout = "2006-01-02"

// Mode определяет тип запроса слотов
type Mode int

const (
	// ModeSoonest запрашивает limit ближайших слотов локации
	ModeSoonest Mode = iota
	// ModeDateRange запрашивает все слоты в диапазоне дат
	ModeDateRange
)

func (m Mode) String() string {
	if m == ModeDateRange {
		return "date-range"
	}
	return "soonest"
}

// Slot представляет слот из ответа API расписания. В режиме диапазона дат
// заполнен Timestamp, в режиме ближайших слотов StartTimestamp.
type Slot struct {
	Timestamp      string `json:"timestamp"`
	StartTimestamp string `json:"startTimestamp"`
	Active         Flag   `json:"active"`
}

// Flag хранит поле active как есть: API отдает 0/1 в одном режиме и
// true/false в другом
type Flag struct {
	value interface{}
}

// NewFlag создает флаг из значения, как после json.Unmarshal
func NewFlag(v interface{}) Flag {
	return Flag{value: v}
}

// UnmarshalJSON реализует json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.value = v
	return nil
}

// IsOne сообщает, равен ли флаг 1 (true считается равным 1)
func (f Flag) IsOne() bool {
	switch v := f.value.(type) {
	case float64:
		return v == 1
	case bool:
		return v
	default:
		return false
	}
}

// Truthy сообщает, является ли флаг истинным: не false, не 0, не null и не
// пустая строка, массив или объект
func (f Flag) Truthy() bool {
	switch v := f.value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

// ActiveTimestamps оставляет только активные слоты и возвращает их время:
// timestamp при active == 1 для диапазона дат, startTimestamp при истинном
// active для ближайших слотов
func ActiveTimestamps(mode Mode, slots []Slot) []string {
	timestamps := make([]string, 0, len(slots))
	for _, s := range slots {
		switch mode {
		case ModeDateRange:
			if s.Active.IsOne() {
				timestamps = append(timestamps, s.Timestamp)
			}
		default:
			if s.Active.Truthy() {
				timestamps = append(timestamps, s.StartTimestamp)
			}
		}
	}
	return timestamps
}

// ValidDate проверяет, что строка является датой в формате YYYY-MM-DD
func ValidDate(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// Location представляет пункт приема из справочника локаций
type Location struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
