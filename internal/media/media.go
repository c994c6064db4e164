package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const MaxImageBytes = 5 << 20

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("image is too large")
)

// Store turns an uploaded image into the reference saved on a product.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
}

func readImage(r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, "", ErrTooLarge
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, "", fmt.Errorf("%w: %s", ErrNotImage, ct)
	}
	return data, ct, nil
}

// DataURIStore embeds the image in the reference itself.
type DataURIStore struct{}

func (DataURIStore) Put(_ context.Context, _ string, r io.Reader) (string, error) {
	data, ct, err := readImage(r)
	if err != nil {
		return "", err
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(url, folder string) (*CloudinaryStore, error) {
	if url == "" {
		return nil, errors.New("CLOUDINARY_URL is empty")
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, _ string, r io.Reader) (string, error) {
	data, _, err := readImage(r)
	if err != nil {
		return "", err
	}
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}
