package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/r3e-network/llrt-go/internal/framework"
)

// bodyOnlyHeaders are stripped when a redirect rewrites the method to GET
// (spec.md §4.8: "strip body-only headers").
var bodyOnlyHeaders = []string{"Content-Encoding", "Content-Language", "Content-Location", "Content-Type"}

// Do executes req, following redirects per req.Redirect and spec.md
// §4.8's exact rewrite rules. An abort signal, if set, races the
// request and cancels it via context.
func (c *Client) Do(req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	redirectMode := req.Redirect
	if redirectMode == "" {
		redirectMode = RedirectFollow
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if req.Signal != nil {
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		req.Signal.OnAbort(func(any) { cancel() })
	}

	currentURL := req.URL
	currentMethod := method
	currentBody := req.Body
	headers := cloneHeader(req.Headers)
	redirected := false

	for redirects := 0; ; redirects++ {
		if redirects > defaultMaxRedirects {
			return nil, framework.New(framework.KindAbortError, "fetch", errTooManyRedirects)
		}

		var bodyReader io.Reader
		if len(currentBody) > 0 {
			bodyReader = bytes.NewReader(currentBody)
		}

		httpReq, err := http.NewRequestWithContext(ctx, currentMethod, currentURL, bodyReader)
		if err != nil {
			return nil, err
		}
		httpReq.Header = headers.Clone()
		if httpReq.Header.Get("User-Agent") == "" {
			httpReq.Header.Set("User-Agent", c.userAgent)
		}
		if httpReq.Header.Get("Accept") == "" {
			httpReq.Header.Set("Accept", "*/*")
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			if req.Signal != nil && req.Signal.Aborted() {
				return nil, framework.New(framework.KindAbortError, "fetch", abortReasonError(req.Signal.Reason()))
			}
			return nil, err
		}

		if !isRedirect(resp.StatusCode) || redirectMode != RedirectFollow {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			resp.Body.Close()
			if readErr != nil {
				return nil, readErr
			}
			if isRedirect(resp.StatusCode) && redirectMode == RedirectError {
				return nil, framework.Newf(framework.KindAbortError, "fetch", "redirect encountered with redirect=error (status %d)", resp.StatusCode)
			}
			return &Response{
				Status:     resp.StatusCode,
				StatusText: resp.Status,
				Headers:    resp.Header,
				URL:        currentURL,
				Redirected: redirected,
				body:       body,
			}, nil
		}

		location := resp.Header.Get("Location")
		resp.Body.Close()
		nextURL, err := resolveRedirect(currentURL, location)
		if err != nil {
			return nil, err
		}

		nextMethod := currentMethod
		switch resp.StatusCode {
		case http.StatusMovedPermanently, http.StatusFound:
			if currentMethod == http.MethodPost {
				nextMethod = http.MethodGet
			}
		case http.StatusSeeOther:
			if currentMethod != http.MethodGet && currentMethod != http.MethodHead {
				nextMethod = http.MethodGet
			}
		}

		if nextMethod == http.MethodGet && currentMethod != http.MethodGet {
			currentBody = nil
			for _, h := range bodyOnlyHeaders {
				headers.Del(h)
			}
		}

		if crossOrigin(currentURL, nextURL) {
			headers.Del("Authorization")
		}

		currentURL = nextURL
		currentMethod = nextMethod
		redirected = true
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func resolveRedirect(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

func crossOrigin(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return true
	}
	return ua.Scheme != ub.Scheme || ua.Host != ub.Host
}

func abortReasonError(reason any) error {
	if err, ok := reason.(error); ok {
		return err
	}
	return fetchError("aborted")
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return make(http.Header)
	}
	return h.Clone()
}

const maxResponseBytes = 64 << 20

type fetchError string

func (e fetchError) Error() string { return string(e) }

const errTooManyRedirects fetchError = "too many redirects"
