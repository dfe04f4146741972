// Package netx moves photo bytes to and from presigned object storage URLs.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxPhotoSize bounds uploads and downloads.
const MaxPhotoSize = 10 << 20

// UploadToPresignedURL PUTs data to url. The content type is sniffed from
// the data.
func UploadToPresignedURL(ctx context.Context, client *http.Client, url string, data []byte) error {
	if len(data) > MaxPhotoSize {
		return fmt.Errorf("upload failed: %d bytes exceed the %d byte limit", len(data), MaxPhotoSize)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}

// DownloadFromPresignedURL GETs the object at url.
func DownloadFromPresignedURL(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPhotoSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxPhotoSize {
		return nil, fmt.Errorf("download failed: object exceeds the %d byte limit", MaxPhotoSize)
	}
	return data, nil
}
