package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// errBackendUnauthorized signals that the backend rejected the access
// token we injected. This happens when a refresh was still in flight at
// admission time; the retry protocol converts it into a delayed 307 so
// the client re-issues the request against the refreshed cache entry.
var errBackendUnauthorized = errors.New("backend rejected injected access token")

type contextKey string

const originalURIKey contextKey = "original-request-uri"

// newBackendProxy builds the reverse proxy to the backend collaborator.
// The /api prefix is stripped before forwarding, and responses are
// relayed with their original status and body except for a backend 401,
// which is intercepted by the retry protocol.
func (s *Server) newBackendProxy(backendBaseURL string, retryDelay time.Duration) (http.Handler, error) {
	target, err := url.Parse(backendBaseURL)
	if err != nil {
		return nil, err
	}

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.URL.Path = backendPath(target.Path, req.URL.Path)
			req.Host = target.Host
			log.Info().Str("uri", req.URL.String()).Msg("Calling backend resource")
		},
		ModifyResponse: func(resp *http.Response) error {
			if resp.StatusCode == http.StatusUnauthorized {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				return errBackendUnauthorized
			}
			// Hop headers are recomputed by the relay; do not forward
			// the backend's values.
			resp.Header.Del("Content-Length")
			resp.Header.Del("Transfer-Encoding")
			resp.Header.Del("Connection")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.handleProxyError(w, r, err, retryDelay)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The error handler only sees the outbound request clone, so the
		// client-facing URI travels in the context.
		ctx := context.WithValue(r.Context(), originalURIKey, r.RequestURI)
		proxy.ServeHTTP(w, r.WithContext(ctx))
	}), nil
}

// handleProxyError implements the retry protocol: a backend 401 becomes
// a bounded delay followed by a 307 back to the original URI, so the
// client retries once the in-flight refresh has landed. Anything else is
// a transport-level failure and surfaces as 502.
func (s *Server) handleProxyError(w http.ResponseWriter, r *http.Request, err error, retryDelay time.Duration) {
	if errors.Is(err, errBackendUnauthorized) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(retryDelay):
		}

		originalURI, _ := r.Context().Value(originalURIKey).(string)
		if originalURI == "" {
			originalURI = r.URL.RequestURI()
		}
		w.Header().Set("Location", originalURI)
		w.WriteHeader(http.StatusTemporaryRedirect)
		return
	}

	log.Err(err).Msg("Backend call failed")
	http.Error(w, "Bad Gateway", http.StatusBadGateway)
}

// backendPath joins the backend base path with the inbound path minus
// the /api prefix. Only a whole path segment counts as the prefix, so
// a path like /apifoo never maps onto the backend namespace.
func backendPath(basePath, requestPath string) string {
	p := "/"
	if strings.HasPrefix(requestPath, RouteAPIPrefix+"/") {
		p = strings.TrimPrefix(requestPath, RouteAPIPrefix)
	}
	return strings.TrimSuffix(basePath, "/") + p
}
