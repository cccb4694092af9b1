// Package assets re-homes source-hosted images onto an S3-compatible bucket.
// File URLs issued by the document source expire after a short window, so
// mirrored copies are the only stable way to serve image blocks.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/calepin/calepin/internal/config"
	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/util"
)

var assetsLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	assetsLogger = l
}

type Mirror struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string

	httpClient *http.Client
}

func NewMirror(ctx context.Context, cfg config.MirrorConfig, accessKeyID, accessKeySecret string) (*Mirror, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing mirror client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	})

	return &Mirror{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		httpClient:    &http.Client{},
	}, nil
}

// RewriteImages replaces each image block's URL with its mirrored location.
// A block whose mirroring fails keeps its source URL; the post still renders.
func (m *Mirror) RewriteImages(ctx context.Context, blocks []model.Block) {
	for i := range blocks {
		if blocks[i].Kind != model.KindImage || blocks[i].Image == nil {
			continue
		}

		mirrored, err := m.mirrorURL(ctx, blocks[i].Image.URL)
		if err != nil {
			assetsLogger.Error().Err(err).Str("url", blocks[i].Image.URL).Msg("Error mirroring image")
			continue
		}
		blocks[i].Image.URL = mirrored
	}
}

// mirrorURL uploads the image at srcURL to the bucket unless a copy already
// exists, and returns the public URL of the mirrored object. Keys derive from
// the URL without its query string, which is where the source puts its
// expiring signature.
func (m *Mirror) mirrorURL(ctx context.Context, srcURL string) (string, error) {
	parsed, err := url.Parse(srcURL)
	if err != nil {
		return "", fmt.Errorf("parsing image URL: %w", err)
	}

	key := util.ContentHashString(parsed.Host+parsed.Path) + path.Ext(parsed.Path)

	_, err = m.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return m.publicBaseURL + "/" + key, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading image: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(resp.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	assetsLogger.Info().Str("key", key).Msg("Mirrored image")
	return m.publicBaseURL + "/" + key, nil
}
