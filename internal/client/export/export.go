// Package export writes query results and favorites as indented JSON,
// either to a local file or to an object in an S3-compatible bucket.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/dmitrijs2005/countrybook/internal/filex"
	"github.com/dmitrijs2005/countrybook/internal/logging"
)

var ErrBadDestination = errors.New("invalid export destination")

// Destination is either a local path or an s3://bucket/key object.
type Destination struct {
	Bucket string
	Key    string
	Path   string
}

func (d Destination) IsS3() bool { return d.Bucket != "" }

func (d Destination) String() string {
	if d.IsS3() {
		return "s3://" + d.Bucket + "/" + d.Key
	}
	return d.Path
}

func ParseDestination(raw string) (Destination, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Destination{}, fmt.Errorf("%w: empty", ErrBadDestination)
	}
	if !strings.HasPrefix(raw, "s3://") {
		return Destination{Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Destination{}, fmt.Errorf("%w: %v", ErrBadDestination, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return Destination{}, fmt.Errorf("%w: want s3://bucket/key, got %q", ErrBadDestination, raw)
	}
	return Destination{Bucket: u.Host, Key: key}, nil
}

// Exporter routes a document to the local filesystem or to S3.
type Exporter struct {
	s3  *S3Exporter
	log logging.Logger
}

// New returns an exporter. s3 may be nil, in which case s3:// destinations
// are rejected.
func New(s3 *S3Exporter, log logging.Logger) *Exporter {
	if log == nil {
		log = logging.Discard()
	}
	return &Exporter{s3: s3, log: log.With("component", "export")}
}

// Export encodes v and writes it to dest. It returns the number of bytes
// written.
func (e *Exporter) Export(ctx context.Context, dest string, v any) (int, error) {
	d, err := ParseDestination(dest)
	if err != nil {
		return 0, err
	}
	body, err := Encode(v)
	if err != nil {
		return 0, err
	}

	if d.IsS3() {
		if e.s3 == nil {
			return 0, fmt.Errorf("%w: object storage is not configured", ErrBadDestination)
		}
		err = e.s3.Put(ctx, d.Bucket, d.Key, body)
	} else {
		err = writeFile(d.Path, body)
	}
	if err != nil {
		e.log.Warn(ctx, "export failed", "dest", d.String(), "err", err)
		return 0, err
	}
	e.log.Info(ctx, "exported", "dest", d.String(), "bytes", len(body))
	return len(body), nil
}

func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFile(path string, body []byte) error {
	abs, err := filex.EnsureParentDir(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(abs, body, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", abs, err)
	}
	return nil
}
