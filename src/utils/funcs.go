package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

func DecodeSnakeCase(input interface{}) (map[string]interface{}, error) {
	output := map[string]interface{}{}
	if err := mapstructure.Decode(input, &output); err != nil {
		return nil, err
	}
	newOut := map[string]interface{}{}
	for k, v := range output {
		newOut[strcase.ToSnake(k)] = v
	}
	return newOut, nil
}

// DecodeSnakeCaseSlice decodes every element of a slice of structs.
func DecodeSnakeCaseSlice[T any](input []T) ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, 0, len(input))
	for i := range input {
		row, err := DecodeSnakeCase(input[i])
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func WriteAsJsonFile(v interface{}, filePath string) error {
	base := path.Base(filePath)
	dirPath := filePath[:len(filePath)-len(base)]
	if dirPath != "" {
		if err := os.MkdirAll(dirPath, os.ModePerm); err != nil {
			return err
		}
	}

	zap.S().Debugf("marshalling json for %s", filePath)
	bytes, err := json.Marshal(v)
	if err != nil {
		return err
	}

	// write then rename so readers never see a partial file
	tmp := filePath + ".tmp"
	if err = os.WriteFile(tmp, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// OpenSource opens a local file, or falls back to an http GET when source
// is not an existing file.
func OpenSource(source string) (io.ReadCloser, error) {
	if FileExists(source) {
		return os.Open(source)
	}
	u, err := url.ParseRequestURI(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%s: no such file", source)
	}
	resp, err := http.Get(u.String())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected http GET status: %s", resp.Status)
	}
	return resp.Body, nil
}

func ReadJsonFile(filePath string, dest interface{}) error {
	r, err := OpenSource(filePath)
	if err != nil {
		return err
	}
	defer r.Close()

	bytes, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, dest)
}
