package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

func newTestReceiver(t *testing.T) *Receiver {
	t.Helper()
	r, err := NewReceiver(config.UploadConfig{
		TempDir:       t.TempDir(),
		MaxImageBytes: 1024,
		MaxVideoBytes: 4096,
	})
	require.NoError(t, err)
	return r
}

func header(filename, contentType string, size int64) *multipart.FileHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{Filename: filename, Header: h, Size: size}
}

func TestValidate(t *testing.T) {
	r := newTestReceiver(t)

	tests := []struct {
		name    string
		fh      *multipart.FileHeader
		kind    models.MediaKind
		wantErr bool
	}{
		{"png avatar", header("me.PNG", "image/png", 100), models.MediaKindImage, false},
		{"jpg with charset", header("me.jpg", "image/jpeg; charset=binary", 100), models.MediaKindImage, false},
		{"gif rejected", header("me.gif", "image/gif", 100), models.MediaKindImage, true},
		{"extension lies", header("me.png", "application/pdf", 100), models.MediaKindImage, true},
		{"image too large", header("me.png", "image/png", 2048), models.MediaKindImage, true},
		{"mkv video", header("clip.mkv", "video/x-matroska", 4096), models.MediaKindVideo, false},
		{"mov video", header("clip.mov", "video/quicktime", 10), models.MediaKindVideo, false},
		{"video too large", header("clip.mp4", "video/mp4", 4097), models.MediaKindVideo, true},
		{"webm rejected", header("clip.webm", "video/webm", 10), models.MediaKindVideo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate("field", tt.fh, tt.kind)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func multipartContext(t *testing.T, field, filename, contentType string, data []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.WriteField("title", "x"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestReceive(t *testing.T) {
	r := newTestReceiver(t)
	c := multipartContext(t, FieldAvatar, "me.png", "image/png", []byte("png-bytes"))

	file, err := r.Receive(c, FieldAvatar, models.MediaKindImage, true)
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, "me.png", file.OriginalName)
	assert.Equal(t, models.MediaKindImage, file.Kind)

	data, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	Cleanup(file, nil)
	_, err = os.Stat(file.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestReceiveMissingField(t *testing.T) {
	r := newTestReceiver(t)

	c := multipartContext(t, "", "", "", nil)
	file, err := r.Receive(c, FieldCoverImage, models.MediaKindImage, false)
	assert.NoError(t, err)
	assert.Nil(t, file)

	c = multipartContext(t, "", "", "", nil)
	_, err = r.Receive(c, FieldAvatar, models.MediaKindImage, true)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
}
