package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"attendancelist/internal/apperrors"
	"attendancelist/internal/logger"
	"attendancelist/internal/records"
)

const maxBodyBytes = 32 << 20

// HTTPSource calls the attendance-list endpoint of the registration backend.
type HTTPSource struct {
	URL  string
	HTTP *http.Client
}

// NewHTTP creates a source with the given request timeout.
func NewHTTP(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:  url,
		HTTP: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Name() string { return "http" }

// Fetch issues a single GET and decodes the JSON array body.
func (s *HTTPSource) Fetch(ctx context.Context) ([]records.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, &apperrors.FetchError{Source: s.Name(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, &apperrors.FetchError{Source: s.Name(), Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &apperrors.FetchError{
			Source: s.Name(),
			Status: resp.StatusCode,
			Err:    errors.New(strings.TrimSpace(string(snippet))),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &apperrors.FetchError{Source: s.Name(), Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return nil, &apperrors.FetchError{Source: s.Name(), Status: resp.StatusCode, Err: errors.New("response body too large")}
	}

	recs, skipped, err := records.DecodeList(body)
	if err != nil {
		return nil, &apperrors.FetchError{Source: s.Name(), Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(skipped) > 0 {
		logger.Warn().Ints("indexes", skipped).Str("source", s.Name()).Msg("skipped malformed attendance records")
	}
	return recs, nil
}
