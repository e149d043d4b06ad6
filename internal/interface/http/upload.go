package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-account-service/internal/application"
)

const defaultMaxUploadBytes = 5 << 20

var errTooLarge = errors.New("request body too large")

// limitBody caps the request body before any multipart parsing happens.
func limitBody(c *gin.Context, max int64) {
	if max <= 0 {
		max = defaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
}

// formUpload opens the named multipart file. A missing file yields a nil
// upload and no error. The returned closer is never nil.
func formUpload(c *gin.Context, field string) (*application.Upload, io.Closer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if isTooLarge(err) {
			return nil, nopCloser{}, errTooLarge
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nopCloser{}, nil
		}
		return nil, nopCloser{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nopCloser{}, err
	}
	return &application.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, f, nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
