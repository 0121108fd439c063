package trackingmore

import (
	"regexp"
	"strings"
)

// Правила автоопределения перевозчика по форме трек-номера.
// Порядок важен: выигрывает первое совпадение, carrier от вызывающего —
// только запасной вариант, когда не совпало ничего.
var carrierRules = []struct {
	pattern *regexp.Regexp
	carrier string
}{
	{regexp.MustCompile(`^SF\d{12,15}$`), "sf-express"},
	{regexp.MustCompile(`^YT\d{13,15}$`), "yto"},
	{regexp.MustCompile(`^JT\d{10,13}$`), "jtexpress"},
	{regexp.MustCompile(`^E[A-Z]\d{9}CN$`), "china-ems"},
}

func DetectCarrier(trackingNumber string) string {
	n := strings.ToUpper(strings.TrimSpace(trackingNumber))
	for _, r := range carrierRules {
		if r.pattern.MatchString(n) {
			return r.carrier
		}
	}
	return ""
}
