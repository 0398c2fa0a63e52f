package monitor

import (
	"fmt"
	"strings"
)

// Report накапливает строки отчета одного цикла
type Report struct {
	lines    []string
	sections int
	slots    int
}

// Add добавляет заголовок локации и пронумерованные слоты. Пустой список
// слотов ничего не добавляет.
func (r *Report) Add(program string, locationID int, slots []string) {
	if len(slots) == 0 {
		return
	}

	if r.sections > 0 {
		r.lines = append(r.lines, "")
	}
	r.lines = append(r.lines, fmt.Sprintf("*** [%s] Available slots at %d:", strings.ToUpper(program), locationID))
	for i, slot := range slots {
		r.lines = append(r.lines, fmt.Sprintf("%d. %s", i+1, slot))
	}

	r.sections++
	r.slots += len(slots)
}

// Empty сообщает, что в цикле ничего не найдено
func (r *Report) Empty() bool {
	return r.sections == 0
}

// Sections возвращает число локаций со слотами
func (r *Report) Sections() int {
	return r.sections
}

// SlotCount возвращает общее число найденных слотов
func (r *Report) SlotCount() int {
	return r.slots
}

// Lines возвращает копию строк отчета
func (r *Report) Lines() []string {
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Text возвращает отчет одной строкой
func (r *Report) Text() string {
	return strings.Join(r.lines, "\n")
}
