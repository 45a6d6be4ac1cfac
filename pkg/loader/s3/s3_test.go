package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
)

type fakeObjectAPI struct {
	objects map[string]string
	gets    int
}

func (f *fakeObjectAPI) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key), ETag: aws.String("etag-" + key)})
		}
	}
	return out, nil
}

func (f *fakeObjectAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gets++
	body := f.objects[aws.ToString(in.Key)]
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestListDocumentsFiltersAndSorts(t *testing.T) {
	api := &fakeObjectAPI{objects: map[string]string{
		"run/b.pdf":        "",
		"run/a.txt":        "",
		"run/persona.json": "",
		"run/nested/c.pdf": "",
		"other/d.pdf":      "",
	}}
	l := NewS3FileLoaderWithClient("bucket", "run/", api)

	files, err := l.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.Equal(t, "run/a.txt", files[0].FilePath)
	assert.Equal(t, loader.DocumentFileTypeText, files[0].FileType)
	assert.Equal(t, "b.pdf", files[1].Name)
}

func TestGetFileBytesCaches(t *testing.T) {
	api := &fakeObjectAPI{objects: map[string]string{"run/a.txt": "Acme Corp"}}
	l := NewS3FileLoaderWithClient("bucket", "run/", api)
	file := loader.DocumentFile{ID: "1", FilePath: "run/a.txt", Loader: l}

	for range 2 {
		got, err := file.GetBytes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", string(got))
	}
	assert.Equal(t, 1, api.gets)
}
