package status

import "strings"

// ShortID превращает длинный идентификатор в короткий для карточек:
// "abc123-def456" -> "#abc123", "plainId" -> "#plainId", "" -> "".
func ShortID(id string) string {
	if id == "" {
		return ""
	}
	head, _, _ := strings.Cut(id, "-")
	return "#" + head
}
