package pipefs

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/mattetti/filebuffer"
)

// S3Filesystem is a FileSystem backed by an S3 bucket. Paths take the form
// "s3://bucket/key".
type S3Filesystem struct {
	client *s3.S3
}

func parseS3Path(filePath string) (bucket, key string, err error) {
	parsed, err := url.Parse(filePath)
	if err != nil {
		return "", "", err
	}
	if parsed.Scheme != "s3" || parsed.Host == "" {
		return "", "", fmt.Errorf("not an s3 path: %s", filePath)
	}
	return parsed.Host, strings.TrimPrefix(parsed.Path, "/"), nil
}

// globPrefix returns the longest glob-free prefix of key, used to narrow the
// bucket listing before glob matching.
func globPrefix(key string) string {
	if idx := strings.IndexAny(key, "*?["); idx != -1 {
		return key[:idx]
	}
	return key
}

func (s *S3Filesystem) ListFiles(pathGlob string) ([]FileInfo, error) {
	bucket, keyGlob, err := parseS3Path(pathGlob)
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0)
	params := &s3.ListObjectsInput{
		Bucket: aws.String(bucket),
		Prefix: aws.String(globPrefix(keyGlob)),
	}
	err = s.client.ListObjectsPages(params,
		func(page *s3.ListObjectsOutput, _ bool) bool {
			for _, object := range page.Contents {
				matched, _ := path.Match(keyGlob, *object.Key)
				if matched || *object.Key == keyGlob {
					files = append(files, FileInfo{
						Name: fmt.Sprintf("s3://%s/%s", bucket, *object.Key),
						Size: *object.Size,
					})
				}
			}
			return true
		})

	return files, err
}

func (s *S3Filesystem) Stat(filePath string) (FileInfo, error) {
	bucket, key, err := parseS3Path(filePath)
	if err != nil {
		return FileInfo{}, err
	}

	params := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	output, err := s.client.HeadObject(params)
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{
		Name: filePath,
		Size: *output.ContentLength,
	}, nil
}

func (s *S3Filesystem) OpenReader(filePath string, startAt int64) (io.ReadCloser, error) {
	fInfo, err := s.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if startAt >= fInfo.Size {
		return io.NopCloser(strings.NewReader("")), nil
	}

	bucket, key, err := parseS3Path(filePath)
	if err != nil {
		return nil, err
	}

	reader := &s3Reader{
		client:    s.client,
		bucket:    bucket,
		key:       key,
		offset:    startAt,
		chunkSize: 20 * 1024 * 1024, // Download files in 20Mb chunks
		totalSize: fInfo.Size,
	}
	err = reader.loadNextChunk()
	return reader, err
}

func (s *S3Filesystem) OpenWriter(filePath string) (io.WriteCloser, error) {
	bucket, key, err := parseS3Path(filePath)
	if err != nil {
		return nil, err
	}

	return &s3Writer{
		client: s.client,
		bucket: bucket,
		key:    key,
		buf:    filebuffer.New(nil),
	}, nil
}

func (s *S3Filesystem) Init() error {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return err
	}
	s.client = s3.New(sess)
	return nil
}

func (s *S3Filesystem) Join(elem ...string) string {
	return strings.Join(elem, "/")
}
