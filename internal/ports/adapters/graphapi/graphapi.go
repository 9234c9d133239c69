package graphapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const apiVersion = "v16.0"

// Adapter talks to the Graph API video endpoints for one page. Uploads are
// single synchronous multipart requests with a generous timeout; there is no
// retry logic here, callers decide what a failed file means.
type Adapter struct {
	token   string
	pageID  string
	baseURL string
	client  *http.Client
}

func New(token, pageID, baseURL string, timeout time.Duration) *Adapter {
	baseURL = normalizeBaseURL(baseURL)
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Adapter{
		token:   token,
		pageID:  pageID,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// VerifyPage confirms the token grants access to the page and returns the
// page's display name.
func (a *Adapter) VerifyPage(ctx context.Context) (string, error) {
	u := fmt.Sprintf("%s/%s/%s?access_token=%s", a.baseURL, apiVersion, a.pageID, url.QueryEscape(a.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("verify page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("verify page: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("verify page: %s", errorMessage(body, resp.StatusCode))
	}

	var page struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return "", fmt.Errorf("verify page: parse response: %w", err)
	}
	if page.Name == "" {
		page.Name = "Unknown"
	}
	return page.Name, nil
}

// UploadVideo posts the file in a single multipart request and returns the
// remote video id plus a public viewer URL constructed from it.
func (a *Adapter) UploadVideo(ctx context.Context, videoPath, title, description string) (string, string, error) {
	f, err := os.Open(videoPath)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"access_token": a.token,
		"description":  description,
		"title":        title,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", "", err
		}
	}

	fw, err := mw.CreateFormFile("source", filepath.Base(videoPath))
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", "", err
	}
	if err := mw.Close(); err != nil {
		return "", "", err
	}

	u := fmt.Sprintf("%s/%s/%s/videos", a.baseURL, apiVersion, a.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("upload video: %w", err)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("upload video: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("upload video: %s", errorMessage(rb, resp.StatusCode))
	}

	var info struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rb, &info); err != nil {
		return "", "", fmt.Errorf("upload video: parse response: %w", err)
	}
	if info.ID == "" {
		return "", "", fmt.Errorf("upload video: response carried no video id")
	}
	viewURL := fmt.Sprintf("https://www.facebook.com/%s/videos/%s", a.pageID, info.ID)
	return info.ID, viewURL, nil
}

func errorMessage(body []byte, status int) string {
	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		return ge.Error.Message
	}
	return fmt.Sprintf("unexpected http status %d", status)
}
