// "Тупой" клиент архива отчётов: кладёт готовые PDF в бакет и листает их.

package s3storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// Client - архив отчётов в S3-совместимом хранилище.
type Client struct {
	api    *minio.Client
	bucket string
	prefix string
	now    func() time.Time
}

// StoredObject - сырой объект из S3.
type StoredObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// New создает клиент, используя наш конфиг.
func New(cfg config.S3Config) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 archive is not configured (empty bucket)")
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	return &Client{
		api:    minioClient,
		bucket: cfg.Bucket,
		prefix: normalizePrefix(cfg.Prefix),
		now:    time.Now,
	}, nil
}

// Archive загружает локальный файл и возвращает ключ объекта.
//
// Ключ: <prefix>YYYY/MM/DD/HHMMSS-<имя файла>, чтобы повторные отчёты
// с одинаковым именем не затирали друг друга.
func (c *Client) Archive(ctx context.Context, localPath string) (string, error) {
	key := c.keyFor(localPath)

	info, err := c.api.FPutObject(ctx, c.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType(localPath),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", localPath, err)
	}

	utils.Debug("S3 object uploaded", "bucket", c.bucket, "key", key, "size", info.Size)
	return key, nil
}

// ListReports возвращает архивные отчёты, новые первыми.
func (c *Client) ListReports(ctx context.Context) ([]StoredObject, error) {
	var objects []StoredObject

	opts := minio.ListObjectsOptions{
		Prefix:    c.prefix,
		Recursive: true,
	}
	for obj := range c.api.ListObjects(ctx, c.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// Пропускаем саму "папку"
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		objects = append(objects, StoredObject{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

func (c *Client) keyFor(localPath string) string {
	ts := c.now().UTC()
	return c.prefix + path.Join(ts.Format("2006/01/02"), ts.Format("150405")+"-"+filepath.Base(localPath))
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func contentType(localPath string) string {
	if strings.EqualFold(filepath.Ext(localPath), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}
