package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
)

type fakeUploader struct {
	Err        error
	LastBucket string
	LastKey    string
	LastType   string
	LastBody   []byte
	Calls      int
}

func (f *fakeUploader) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.Calls++
	f.LastBucket = aws.ToString(in.Bucket)
	f.LastKey = aws.ToString(in.Key)
	f.LastType = aws.ToString(in.ContentType)
	b, _ := io.ReadAll(in.Body)
	f.LastBody = b
	if f.Err != nil {
		return nil, f.Err
	}
	return &s3.PutObjectOutput{}, nil
}

var sample = []models.Country{
	{CCA3: "FRA", Region: "Europe"},
	{CCA3: "JPN", Region: "Asia"},
}

func TestParseDestination(t *testing.T) {
	tests := []struct {
		in      string
		want    Destination
		wantErr bool
	}{
		{in: "out/countries.json", want: Destination{Path: "out/countries.json"}},
		{in: "s3://bucket/exports/favs.json", want: Destination{Bucket: "bucket", Key: "exports/favs.json"}},
		{in: "", wantErr: true},
		{in: "s3://bucket", wantErr: true},
		{in: "s3://bucket/", wantErr: true},
		{in: "s3:///key", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDestination(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadDestination)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "countries.json")
	n, err := New(nil, nil).Export(context.Background(), path, sample)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.Contains(t, string(raw), "\n  {")

	var back []models.Country
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Len(t, back, 2)
}

func TestExport_S3(t *testing.T) {
	up := &fakeUploader{}
	e := New(NewS3Exporter(up), nil)

	n, err := e.Export(context.Background(), "s3://books/me/favs.json", sample)
	require.NoError(t, err)
	assert.Equal(t, "books", up.LastBucket)
	assert.Equal(t, "me/favs.json", up.LastKey)
	assert.Equal(t, "application/json", up.LastType)
	assert.Len(t, up.LastBody, n)
}

func TestExport_S3Errors(t *testing.T) {
	_, err := New(nil, nil).Export(context.Background(), "s3://b/k.json", sample)
	assert.ErrorIs(t, err, ErrBadDestination)

	boom := errors.New("access denied")
	up := &fakeUploader{Err: boom}
	_, err = New(NewS3Exporter(up), nil).Export(context.Background(), "s3://b/k.json", sample)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, up.Calls)
}

func TestExport_Unencodable(t *testing.T) {
	up := &fakeUploader{}
	_, err := New(NewS3Exporter(up), nil).Export(context.Background(), "s3://b/k.json", make(chan int))
	require.Error(t, err)
	assert.Equal(t, 0, up.Calls)
}

func TestNewS3ExporterFromSettings(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew
	})

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	e, err := NewS3ExporterFromSettings(context.Background(), S3Settings{
		Endpoint:     "http://127.0.0.1:9000",
		Region:       "us-east-1",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "us-east-1", lo.Region)
	assert.NotNil(t, lo.Credentials)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewS3ExporterFromSettings(context.Background(), S3Settings{Region: "x"})
	assert.Error(t, err)
}
