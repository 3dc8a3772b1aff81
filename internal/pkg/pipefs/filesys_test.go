package pipefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferLocal(t *testing.T) {
	fs, err := Infer("./bar.txt")
	assert.Nil(t, err)
	assert.IsType(t, &LocalFilesystem{}, fs)
}

func TestParseS3Path(t *testing.T) {
	var parseTests = []struct {
		path           string
		expectedBucket string
		expectedKey    string
		expectErr      bool
	}{
		{"s3://bucket/key", "bucket", "key", false},
		{"s3://bucket/nested/key.txt", "bucket", "nested/key.txt", false},
		{"s3://bucket/", "bucket", "", false},
		{"/local/path", "", "", true},
		{"s3://", "", "", true},
	}

	for _, test := range parseTests {
		bucket, key, err := parseS3Path(test.path)
		if test.expectErr {
			assert.NotNil(t, err, test.path)
			continue
		}
		assert.Nil(t, err, test.path)
		assert.Equal(t, test.expectedBucket, bucket)
		assert.Equal(t, test.expectedKey, key)
	}
}

func TestGlobPrefix(t *testing.T) {
	assert.Equal(t, "logs/2020-", globPrefix("logs/2020-*"))
	assert.Equal(t, "logs/part", globPrefix("logs/part?"))
	assert.Equal(t, "exact/key", globPrefix("exact/key"))
	assert.Equal(t, "", globPrefix("[ab]*"))
}
