package chi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/kailas-cloud/teammaker/internal/domain/table"
)

// uploadField is the multipart form field carrying the table file.
const uploadField = "file"

var errInvalidRequest = errors.New("invalid request")

type invalidRequestError struct {
	msg string
}

func (e *invalidRequestError) Error() string { return e.msg }

func (e *invalidRequestError) Is(target error) bool { return target == errInvalidRequest }

func invalidf(format string, args ...any) error {
	return &invalidRequestError{msg: fmt.Sprintf(format, args...)}
}

// bindTableID binds the {tableID} path parameter.
func bindTableID(r *http.Request) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "tableID", chi.URLParam(r, "tableID"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return uuid.Nil, invalidf("invalid tableID: %v", err)
	}
	return id, nil
}

func parseTableID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, invalidf("invalid tableId %q", s)
	}
	return id, nil
}

// bindUploadParams binds the charset and delimiter query parameters of POST /upload.
func bindUploadParams(r *http.Request) (table.ParseOptions, error) {
	var charset, delimiter *string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "charset", q, &charset); err != nil {
		return table.ParseOptions{}, invalidf("invalid charset: %v", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "delimiter", q, &delimiter); err != nil {
		return table.ParseOptions{}, invalidf("invalid delimiter: %v", err)
	}

	var opts table.ParseOptions
	if charset != nil {
		opts.Charset = *charset
	}
	if delimiter != nil {
		d, err := table.ParseDelimiter(*delimiter)
		if err != nil {
			return table.ParseOptions{}, invalidf("%v", err)
		}
		opts.Delimiter = d
	}
	return opts, nil
}

// readUpload returns the table bytes of an upload body: the "file" part of a
// multipart form or the raw body otherwise.
func readUpload(body io.Reader, contentType string) ([]byte, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		return data, nil
	}

	mr := multipart.NewReader(bytes.NewReader(data), params["boundary"])
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, invalidf("multipart form has no %q field", uploadField)
		}
		if err != nil {
			return nil, invalidf("invalid multipart body: %v", err)
		}
		if part.FormName() != uploadField {
			continue
		}
		file, err := io.ReadAll(part)
		if err != nil {
			return nil, invalidf("read %q field: %v", uploadField, err)
		}
		return file, nil
	}
}
