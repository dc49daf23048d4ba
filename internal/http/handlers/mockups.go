package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"mockup/internal/domain"
)

// maxFormMemory is the part of a multipart body kept in memory; the rest
// spills to temp files that are removed before the handler returns.
const maxFormMemory = 8 << 20

// GenerateMockup handles POST /generate-mockup. Text fields: product,
// variant. File fields: product, logo.
func (a *App) GenerateMockup(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	form, ok := a.parseForm(w, r)
	if !ok {
		return
	}
	defer func() {
		if err := form.RemoveAll(); err != nil {
			logger.Warn().Err(err).Msg("remove multipart temp files")
		}
	}()

	req := domain.MockupRequest{
		ProductName: formValue(form, "product"),
		Variant:     formValue(form, "variant"),
	}
	for _, field := range []struct {
		name string
		dst  **domain.Upload
	}{
		{name: "product", dst: &req.Product},
		{name: "logo", dst: &req.Logo},
	} {
		fh := formFile(form, field.name)
		if fh == nil {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			a.error(w, http.StatusBadRequest, "could not read "+field.name+" upload")
			return
		}
		defer f.Close()
		*field.dst = &domain.Upload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		}
	}

	result, err := a.Mockups.Generate(r.Context(), req)
	if err != nil {
		a.error(w, domain.StatusCode(err), err.Error())
		return
	}
	a.json(w, http.StatusOK, result)
}

// parseForm reads the multipart body. A request that carries no form at all
// (empty or non-multipart body) yields an empty form so validation reports
// the missing uploads.
func (a *App) parseForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, bool) {
	err := r.ParseMultipartForm(maxFormMemory)
	if err == nil {
		return r.MultipartForm, true
	}
	logger := zerolog.Ctx(r.Context())
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		a.error(w, http.StatusBadRequest, "request body too large")
	case r.ContentLength == 0,
		errors.Is(err, http.ErrNotMultipart),
		errors.Is(err, http.ErrMissingBoundary),
		errors.Is(err, io.EOF):
		logger.Debug().Err(err).Msg("request carries no multipart form")
		return &multipart.Form{}, true
	default:
		a.error(w, http.StatusBadRequest, "invalid multipart form")
	}
	logger.Debug().Err(err).Msg("parse multipart form")
	return nil, false
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

// formFile returns the first file part for key. Browsers send an empty part
// without a filename when no file was picked; that counts as absent.
func formFile(form *multipart.Form, key string) *multipart.FileHeader {
	for _, fh := range form.File[key] {
		if fh == nil || (fh.Filename == "" && fh.Size == 0) {
			continue
		}
		return fh
	}
	return nil
}
