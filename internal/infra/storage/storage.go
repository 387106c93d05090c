package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/example/storefront/internal/config"
)

// Store 保存上传文件，返回可供前端引用的路径
type Store interface {
	Save(ctx context.Context, originalName, contentType string, r io.Reader) (string, error)
}

// New 按 upload.backend 选择实现
func New(up *config.UploadConfig, s3cfg *config.S3Config) (Store, error) {
	switch up.Backend {
	case "", "local":
		return NewLocal(up.Dir, up.URLPath)
	case "s3":
		return NewS3(s3cfg)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", up.Backend)
	}
}

// ObjectName 随机文件名，保留小写扩展名
func ObjectName(originalName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
}

// Local 本地磁盘存储，文件通过静态目录对外提供
type Local struct {
	dir     string
	urlPath string
}

func NewLocal(dir, urlPath string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if urlPath == "" {
		urlPath = "/uploads"
	}
	return &Local{dir: dir, urlPath: urlPath}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Save(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	name := ObjectName(originalName)
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join(l.urlPath, name), nil
}

// S3 上传到 S3 桶，返回对象 URL
type S3 struct {
	client s3iface.S3API
	bucket string
	prefix string
	region string
}

func NewS3(cfg *config.S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, err
	}
	return NewS3WithClient(s3.New(sess), cfg), nil
}

// NewS3WithClient 便于注入自定义 client
func NewS3WithClient(client s3iface.S3API, cfg *config.S3Config) *S3 {
	return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, region: cfg.Region}
}

func (s *S3) Save(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	// 图片大小已在上层限制，整体读入内存以满足 ReadSeeker
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := path.Join(s.prefix, ObjectName(originalName))
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
