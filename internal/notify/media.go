package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxMediaSize = 20 << 20

// MediaFetcher downloads inbound message attachments using the account credentials.
type MediaFetcher struct {
	HTTPClient *http.Client
	username   string
	password   string
	logger     *zap.Logger
}

func NewMediaFetcher(accountSID, authToken string, logger *zap.Logger) *MediaFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaFetcher{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		username:   accountSID,
		password:   authToken,
		logger:     logger,
	}
}

func (f *MediaFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.username != "" {
		req.SetBasicAuth(f.username, f.password)
	}

	f.logger.Debug("download media", zap.String("url", url))

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download media: bad status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaSize+1))
	if err != nil {
		return nil, fmt.Errorf("read media: %w", err)
	}
	if len(data) > maxMediaSize {
		return nil, fmt.Errorf("media exceeds %d bytes", maxMediaSize)
	}

	return data, nil
}
