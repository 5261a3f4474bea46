package service

import "testing"

func TestContainsFold(t *testing.T) {
	tests := []struct {
		value string
		term  string
		want  bool
	}{
		{"Коммерческий отдел", "коммерч", true},
		{"Коммерческий отдел", "ОТДЕЛ", true},
		{"Annual Report", "report", true},
		{"Отдел", "финансы", false},
		{"", "финансы", false},
		{"Отдел", "", true},
	}

	for _, tt := range tests {
		if got := containsFold(tt.value, tt.term); got != tt.want {
			t.Errorf("containsFold(%q, %q) = %v, ожидалось %v", tt.value, tt.term, got, tt.want)
		}
	}
}

func TestAnyContainsFold(t *testing.T) {
	if !anyContainsFold("отчёт", "Приказ", "Годовой Отчёт") {
		t.Error("Совпадение во втором поле не найдено")
	}
	if anyContainsFold("отчёт", "Приказ", "Инструкция") {
		t.Error("Ложное совпадение")
	}
	if !anyContainsFold("", "что угодно") {
		t.Error("Пустой запрос должен совпадать со всем")
	}
}
