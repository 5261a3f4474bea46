package service

import "strings"

// containsFold — поиск подстроки без учёта регистра.
// Пустой запрос совпадает с любым значением.
func containsFold(value, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}

// anyContainsFold — поиск подстроки хотя бы в одном из значений.
func anyContainsFold(term string, values ...string) bool {
	if term == "" {
		return true
	}
	for _, v := range values {
		if containsFold(v, term) {
			return true
		}
	}
	return false
}
