package apiclient

// Политика повторов: не больше одного ретрая на вызов.
//
// Ретраим по статусу: 1xx, 5xx (кроме 503 — перегруженный бэкенд добивать
// бессмысленно), а также 429, 408 и 400. Транспортные ошибки ретраим только
// когда устройство считает себя онлайн.
func retryableStatus(status int) bool {
	if status == 503 {
		return false
	}
	if status >= 100 && status <= 199 {
		return true
	}
	if status >= 500 && status <= 599 {
		return true
	}
	switch status {
	case 429, 408, 400:
		return true
	}
	return false
}
