package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mirelhq/babelbot/llm"
)

func TestChatParsesCandidates(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{
			"candidates":[{"content":{"parts":[{"text":"Hi "},{"text":"there"}]}}],
			"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":2,"totalTokenCount":5}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	res, err := c.Chat(context.Background(), llm.Request{
		Model:    "gemini-pro",
		Messages: []llm.Message{{Role: "user", Content: "Hello"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if res.Text != "Hi there" {
		t.Fatalf("Chat() text = %q", res.Text)
	}
	if res.Usage.TotalTokens != 5 {
		t.Fatalf("usage mismatch: %#v", res.Usage)
	}
	if gotPath != "/v1beta/models/gemini-pro:generateContent" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "Hello" {
		t.Fatalf("unexpected request body: %#v", gotBody)
	}
}

func TestChatRequiresModel(t *testing.T) {
	c := New("http://127.0.0.1:0", "k")
	if _, err := c.Chat(context.Background(), llm.Request{}); err == nil {
		t.Fatalf("Chat() expected error for missing model")
	}
}

func TestChatSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "bad")
	_, err := c.Chat(context.Background(), llm.Request{
		Model:    "gemini-pro",
		Messages: []llm.Message{{Role: "user", Content: "x"}},
	})
	if err == nil {
		t.Fatalf("Chat() expected error")
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("error must carry the API message: %v", err)
	}
}

func TestDescribeImageSendsInlineData(t *testing.T) {
	imageBytes := []byte{0xff, 0xd8, 0xff, 0xe0}
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a sunset"}]}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	res, err := c.DescribeImage(context.Background(), llm.ImageRequest{
		Model: "gemini-pro-vision",
		Data:  imageBytes,
	})
	if err != nil {
		t.Fatalf("DescribeImage() error = %v", err)
	}
	if res.Text != "a sunset" {
		t.Fatalf("DescribeImage() text = %q", res.Text)
	}

	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected request body: %#v", gotBody)
	}
	inline := gotBody.Contents[0].Parts[0].InlineData
	if inline == nil {
		t.Fatalf("inline_data missing")
	}
	if inline.MIMEType != "image/jpeg" {
		t.Fatalf("default mime type mismatch: %q", inline.MIMEType)
	}
	decoded, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil || len(decoded) != len(imageBytes) {
		t.Fatalf("inline data must round-trip: err=%v len=%d", err, len(decoded))
	}
}
