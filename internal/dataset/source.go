package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

//go:embed data/iryohi.csv
var embeddedCSV []byte

// Source はデータセットの読み込み元を表します
type Source interface {
	// Open は読み込み元のCSVを開きます
	Open(ctx context.Context) (io.ReadCloser, error)
	// String はログ用の名前を返します
	String() string
}

// EmbeddedSource はバイナリに埋め込まれたサンプルデータです（1954〜2017年）
//
// 列構成は国民医療費の年次表と同じだが、値は表示確認用に作った概算で
// 公表値ではない。実データは DATA_SOURCE でファイルかS3から読み込む。
type EmbeddedSource struct{}

// Open は埋め込みCSVを返します
func (EmbeddedSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(embeddedCSV)), nil
}

func (EmbeddedSource) String() string { return "embedded:data/iryohi.csv" }

// FileSource はローカルファイルのCSVです
type FileSource struct {
	Path string
}

// Open はファイルを開きます
func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

func (s FileSource) String() string { return "file:" + s.Path }

// s3API はS3Sourceが使うS3クライアントの操作です
type s3API interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// S3Source はS3上のCSVです
type S3Source struct {
	Bucket string
	Key    string
	client s3API
}

// NewS3Source は s3://bucket/key 形式のURIからS3Sourceを生成します
func NewS3Source(uri, region string) (*S3Source, error) {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return nil, err
	}

	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create aws session")
	}

	return &S3Source{Bucket: bucket, Key: key, client: s3.New(sess)}, nil
}

// Open はS3オブジェクトを取得します
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (s *S3Source) String() string { return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key) }

func parseS3URI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", errors.Errorf("not an s3 uri: %s", uri)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", errors.Errorf("s3 uri needs bucket and key: %s", uri)
	}
	return bucket, key, nil
}

// SourceFor は DATA_SOURCE の値から読み込み元を選びます
// 空文字は埋め込みデータ、s3:// で始まる値はS3、それ以外はファイルパス
func SourceFor(dataSource, region string) (Source, error) {
	switch {
	case dataSource == "":
		return EmbeddedSource{}, nil
	case strings.HasPrefix(dataSource, "s3://"):
		src, err := NewS3Source(dataSource, region)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return FileSource{Path: dataSource}, nil
	}
}

// Load は読み込み元からデータセットを1回だけ読み込みます
// 失敗はすべて致命的エラーとして呼び出し側に返す（リトライしない）
func Load(ctx context.Context, src Source) (*Dataset, error) {
	log.Printf("[Dataset] Load started: source=%s", src)

	rc, err := src.Open(ctx)
	if err != nil {
		log.Printf("[Dataset] Load failed: source=%s, error=%v", src, err)
		return nil, errors.Wrapf(err, "failed to open %s", src)
	}
	defer rc.Close()

	ds, res, err := Parse(rc)
	if err != nil {
		log.Printf("[Dataset] Load failed: source=%s, error=%v", src, err)
		return nil, errors.Wrapf(err, "failed to parse %s", src)
	}

	years := ds.Years()
	log.Printf("[Dataset] Load completed: source=%s, rows=%d, dropped=%d, years=%d-%d",
		src, ds.Len(), res.Dropped, years[0], years[len(years)-1])
	return ds, nil
}
