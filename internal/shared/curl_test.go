package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookie  string
		wantErr     bool
	}{
		{
			name:        "single quoted header",
			curlCmd:     `curl -H 'X-Xsrf-Token: tok1' https://candfans.jp/api`,
			wantHeaders: map[string]string{"X-Xsrf-Token": "tok1"},
		},
		{
			name:        "double quoted header",
			curlCmd:     `curl -H "X-Xsrf-Token: tok1" https://candfans.jp/api`,
			wantHeaders: map[string]string{"X-Xsrf-Token": "tok1"},
		},
		{
			name:    "several headers",
			curlCmd: `curl -H 'Accept: application/json' -H 'Referer: https://candfans.jp/' https://candfans.jp/api`,
			wantHeaders: map[string]string{
				"Accept":  "application/json",
				"Referer": "https://candfans.jp/",
			},
		},
		{
			name:        "cookie via -b",
			curlCmd:     `curl -b 'candfans_session=abc' https://candfans.jp/api`,
			wantHeaders: map[string]string{},
			wantCookie:  "candfans_session=abc",
		},
		{
			name:        "cookie header is not kept as a regular header",
			curlCmd:     `curl -H 'Cookie: candfans_session=abc' -H 'X-Xsrf-Token: tok' https://candfans.jp/api`,
			wantHeaders: map[string]string{"X-Xsrf-Token": "tok"},
			wantCookie:  "candfans_session=abc",
		},
		{
			name:        "-b wins over cookie header",
			curlCmd:     `curl -H 'Cookie: old=1' -b "new=2" https://candfans.jp/api`,
			wantHeaders: map[string]string{},
			wantCookie:  "new=2",
		},
		{
			name:        "padding around colon",
			curlCmd:     `curl -H 'Referer :  https://candfans.jp/' https://candfans.jp/api`,
			wantHeaders: map[string]string{"Referer": "https://candfans.jp/"},
		},
		{
			name: "line continuations from devtools",
			curlCmd: `curl 'https://candfans.jp/api/contents/get-timeline?user_id=1&page=0' \
  -H 'accept: application/json, text/plain, */*' \
  -H 'cookie: XSRF-TOKEN=xyz; candfans_session=abc' \
  -H 'x-xsrf-token: token_here'`,
			wantHeaders: map[string]string{
				"accept":       "application/json, text/plain, */*",
				"x-xsrf-token": "token_here",
			},
			wantCookie: "XSRF-TOKEN=xyz; candfans_session=abc",
		},
		{
			name:    "nothing to extract",
			curlCmd: `curl https://candfans.jp/api`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand(tc.curlCmd)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("ParseCurlCommand() headers = %v, want %v", result.Headers, tc.wantHeaders)
			}
			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("ParseCurlCommand() header[%s] = %q, want %q", key, got, want)
				}
			}
			if result.Cookie != tc.wantCookie {
				t.Errorf("ParseCurlCommand() cookie = %q, want %q", result.Cookie, tc.wantCookie)
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("reads command from file", func(t *testing.T) {
		curlFile := filepath.Join(t.TempDir(), "curl.sh")
		if err := os.WriteFile(curlFile, []byte(`curl -b 'session=1' -H 'X-Xsrf-Token: tok' https://candfans.jp`), 0644); err != nil {
			t.Fatalf("failed to write curl file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}
		if result.Cookie != "session=1" {
			t.Errorf("cookie = %q", result.Cookie)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/curl.sh"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestCurlHeaders_SessionCredentials(t *testing.T) {
	t.Run("extracts cookie and token", func(t *testing.T) {
		curlCmd := `curl 'https://candfans.jp/api/user/get-users?user_code=abc' \
  -H 'accept: application/json' \
  -H 'cookie: XSRF-TOKEN=aaa; candfans_session=bbb' \
  -H 'x-xsrf-token: aaa%3D' \
  -H 'referer: https://candfans.jp/'`

		headers, err := ParseCurlCommand(curlCmd)
		if err != nil {
			t.Fatalf("ParseCurlCommand() error = %v", err)
		}

		creds, err := headers.SessionCredentials()
		if err != nil {
			t.Fatalf("SessionCredentials() error = %v", err)
		}
		if creds.Cookie != "XSRF-TOKEN=aaa; candfans_session=bbb" {
			t.Errorf("cookie = %q", creds.Cookie)
		}
		if creds.XSRFToken != "aaa%3D" {
			t.Errorf("xsrf token = %q", creds.XSRFToken)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		headers := &CurlHeaders{Headers: map[string]string{}, Cookie: "session=abc"}
		if _, err := headers.SessionCredentials(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("missing cookie", func(t *testing.T) {
		headers := &CurlHeaders{Headers: map[string]string{"X-XSRF-TOKEN": "tok"}}
		if _, err := headers.SessionCredentials(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestCurlHeaders_Header(t *testing.T) {
	headers := &CurlHeaders{Headers: map[string]string{"X-Xsrf-Token": "tok"}}

	if v, ok := headers.Header("x-xsrf-token"); !ok || v != "tok" {
		t.Errorf("Header() = %q, %v", v, ok)
	}
	if _, ok := headers.Header("authorization"); ok {
		t.Error("expected missing header")
	}
}
