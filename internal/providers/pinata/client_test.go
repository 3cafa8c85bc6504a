package pinata_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/mocks"
	"github.com/remixhub/registry/internal/providers/pinata"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// readForm parses a pinFileToIPFS request body into its file content and fields
func readForm(t *testing.T, contentType string, body []byte) (string, []byte, map[string]string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	fields := map[string]string{}
	var fileName string
	var content []byte
	for {
		part, err := r.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FormName() == "file" {
			fileName = part.FileName()
			content = data
			continue
		}
		fields[part.FormName()] = string(data)
	}
	return fileName, content, fields
}

func TestClient_PinFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := pinata.NewClient(pinata.Config{APIURL: "https://pinata.test/", JWT: "secret"}, httpClient, adapter.NewJCS(), nil)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

	httpClient.EXPECT().
		Post(gomock.Any(), "https://pinata.test/pinning/pinFileToIPFS", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error) {
			assert.Equal(t, "Bearer secret", headers["Authorization"])
			fileName, content, fields := readForm(t, headers["Content-Type"], body)
			assert.Equal(t, "design.fig", fileName)
			assert.Equal(t, png, content)
			assert.Contains(t, fields["pinataMetadata"], `"name":"design.fig-`)
			return []byte(`{"IpfsHash":"QmFile","PinSize":40,"Timestamp":"2024-01-01T00:00:00Z"}`), nil
		})

	result, err := client.PinFile(context.Background(), "design.fig", png)
	require.NoError(t, err)
	assert.Equal(t, "QmFile", result.CID)
	assert.Equal(t, int64(40), result.Size)
	assert.Equal(t, "image/png", result.ContentType)
}

func TestClient_PinFile_Rejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := pinata.NewClient(pinata.Config{MaxSize: 4}, mocks.NewMockHTTPClient(ctrl), adapter.NewJCS(), nil)

	_, err := client.PinFile(context.Background(), "empty", nil)
	assert.ErrorIs(t, err, pinata.ErrEmptyFile)

	_, err = client.PinFile(context.Background(), "big", []byte("12345"))
	assert.ErrorIs(t, err, pinata.ErrFileTooLarge)
}

func TestClient_PinJSON_Canonical(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := pinata.NewClient(pinata.Config{JWT: "secret"}, httpClient, adapter.NewJCS(), nil)

	httpClient.EXPECT().
		Post(gomock.Any(), pinata.DefaultAPIURL+"/pinning/pinFileToIPFS", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error) {
			_, content, _ := readForm(t, headers["Content-Type"], body)
			assert.Equal(t, `{"a":1,"b":"x"}`, string(content))
			return []byte(`{"IpfsHash":"QmMeta","PinSize":15}`), nil
		})

	result, err := client.PinJSON(context.Background(), "metadata.json", map[string]interface{}{"b": "x", "a": 1})
	require.NoError(t, err)
	assert.Equal(t, "QmMeta", result.CID)
	assert.Equal(t, "application/json", result.ContentType)
}

func TestClient_Pin_UpstreamErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := pinata.NewClient(pinata.Config{}, httpClient, adapter.NewJCS(), nil)

	httpClient.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("unexpected status code 401"))
	_, err := client.PinFile(context.Background(), "a.txt", []byte("hello"))
	assert.ErrorContains(t, err, "401")

	httpClient.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]byte(`{}`), nil)
	_, err = client.PinFile(context.Background(), "a.txt", []byte("hello"))
	assert.True(t, strings.Contains(err.Error(), "IpfsHash"))
}
