package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// FileRef описывает файл в теле запроса так, как его отдаёт пикер на устройстве:
// локальный uri, mime-тип и имя. Наличие такого значения в теле переключает
// кодирование на multipart/form-data.
type FileRef struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// encodeBody возвращает байты тела и content-type. Для пустого тела — ("", nil).
// JSON по умолчанию; multipart — если среди значений map есть FileRef
// (или map с тройкой uri/type/name).
func encodeBody(body any) ([]byte, string, error) {
	if body == nil {
		return nil, "", nil
	}

	if m, ok := body.(map[string]any); ok && hasFileRef(m) {
		return encodeMultipart(m)
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, "", errors.Wrap(err, "marshal body")
	}
	return b, "application/json", nil
}

func hasFileRef(m map[string]any) bool {
	for _, v := range m {
		if _, ok := asFileRef(v); ok {
			return true
		}
	}
	return false
}

func asFileRef(v any) (FileRef, bool) {
	switch f := v.(type) {
	case FileRef:
		if f.URI != "" && f.Type != "" && f.Name != "" {
			return f, true
		}
	case *FileRef:
		if f != nil && f.URI != "" && f.Type != "" && f.Name != "" {
			return *f, true
		}
	case map[string]any:
		uri, _ := f["uri"].(string)
		typ, _ := f["type"].(string)
		name, _ := f["name"].(string)
		if uri != "" && typ != "" && name != "" {
			return FileRef{URI: uri, Type: typ, Name: name}, true
		}
	}
	return FileRef{}, false
}

func encodeMultipart(m map[string]any) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// детерминированный порядок полей, чтобы тело было воспроизводимым в тестах
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := m[k]
		if f, ok := asFileRef(v); ok {
			if err := writeFilePart(w, k, f); err != nil {
				return nil, "", err
			}
			continue
		}
		if err := w.WriteField(k, fieldString(v)); err != nil {
			return nil, "", errors.Wrap(err, "write form field")
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, field string, f FileRef) error {
	part, err := w.CreateFormFile(field, f.Name)
	if err != nil {
		return errors.Wrap(err, "create form file")
	}

	path := strings.TrimPrefix(f.URI, "file://")
	src, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open file %s", path)
	}
	defer src.Close()

	if _, err := io.Copy(part, src); err != nil {
		return errors.Wrap(err, "copy file part")
	}
	return nil
}

func fieldString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	}
	// сложные значения уходят строкой JSON
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}
