package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fitly/fitly/internal/common"
)

// RESTStorage talks to the service's storage API:
//
//	POST <base>/storage/v1/object/<bucket>/<key>
//	public URL: <base>/storage/v1/object/public/<bucket>/<key>
type RESTStorage struct {
	baseURL string
	anonKey string
	token   func() string
	http    *http.Client
}

// NewREST builds the REST driver. token supplies the current access token
// and may return "" when signed out, in which case the anonymous key
// authorizes the request (and the service will typically reject the write).
func NewREST(baseURL, anonKey string, token func() string, hc *http.Client) *RESTStorage {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &RESTStorage{baseURL: baseURL, anonKey: anonKey, token: token, http: hc}
}

func (s *RESTStorage) Upload(ctx context.Context, bucket, key string, payload []byte, opts UploadOptions) error {
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	ct := opts.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	req.Header.Set("Content-Type", ct)
	req.Header.Set("x-upsert", strconv.FormatBool(opts.Upsert))
	req.Header.Set("apikey", s.anonKey)
	bearer := s.token()
	if bearer == "" {
		bearer = s.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := s.http.Do(req)
	if err != nil {
		return common.NewError(common.KindNetwork, "storage unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		msg := storageMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("upload failed: %s", resp.Status)
		}
		return common.NewError(common.KindBackend, msg, fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

func (s *RESTStorage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, key)
}

func storageMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
