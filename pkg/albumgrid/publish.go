package albumgrid

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"k8s.io/klog/v2"
)

// uploadAPI is the slice of s3manager.Uploader that Publish needs.
type uploadAPI interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// NewUploader returns an S3 uploader for region, using the default
// credential chain.
func NewUploader(region string) (*s3manager.Uploader, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return s3manager.NewUploader(sess), nil
}

// Publish uploads the album page, every thumbnail, and any mirrored
// originals to bucket under prefix. Object keys preserve each file's path
// relative to the album directory, so the page's relative links keep
// working when the bucket is served over HTTP. The first failed upload
// aborts the publish.
func Publish(ctx context.Context, up uploadAPI, bucket string, prefix string, albumPath string, a *Assembly) error {
	albumDir := filepath.Dir(albumPath)

	paths := []string{albumPath}
	for _, r := range a.Records {
		paths = append(paths, r.Thumb)
		if under(albumDir, r.Source) {
			paths = append(paths, r.Source)
		}
	}

	for _, p := range paths {
		if err := upload(ctx, up, bucket, prefix, albumDir, p); err != nil {
			return err
		}
	}
	klog.Infof("published %d files to s3://%s/%s", len(paths), bucket, prefix)
	return nil
}

func upload(ctx context.Context, up uploadAPI, bucket string, prefix string, albumDir string, p string) error {
	rel, err := filepath.Rel(albumDir, p)
	if err != nil {
		rel = filepath.Base(p)
	}
	key := path.Join(prefix, filepath.ToSlash(rel))

	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	in := &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := up.UploadWithContext(ctx, in); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	klog.V(1).Infof("uploaded s3://%s/%s", bucket, key)
	return nil
}

// under reports whether p sits inside dir.
func under(dir string, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
