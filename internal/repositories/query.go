package repositories

import "strings"

// likeEscape - символ экранирования для LIKE, в SQL передается как ESCAPE '!'
const likeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern строит шаблон "%s%" для поиска подстроки, спецсимволы
// пользовательского ввода экранируются
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}
