package apiclient

import (
	"encoding/json"
	"fmt"
)

// APIError — нормализованная ошибка вызова. Status = HTTP-статус ответа,
// либо 500, если ответа не было вовсе (транспортная ошибка).
type APIError struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("api error: status=%d data=%s", e.Status, string(e.Data))
	}
	return fmt.Sprintf("api error: status=%d", e.Status)
}

// Response — дискриминированный результат: ровно одно из Data/Error заполнено.
// Do никогда не возвращает go-ошибку, все сбои приходят сюда.
type Response struct {
	Data  json.RawMessage
	Error *APIError
}

func (r Response) OK() bool {
	return r.Error == nil
}

// Decode распаковывает Data в out; для ошибочного результата возвращает сам APIError.
func (r Response) Decode(out any) error {
	if r.Error != nil {
		return r.Error
	}
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, out)
}

func errResponse(status int, data []byte) Response {
	return Response{Error: &APIError{Status: status, Data: data}}
}
