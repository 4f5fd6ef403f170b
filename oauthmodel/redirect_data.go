package oauthmodel

// RedirectData is the 401 response body handed to unauthenticated
// clients. It carries the absolute authorization-initiation URL the
// client should navigate to.
type RedirectData struct {
	RedirectTo string `json:"redirect_to"`
}

// AuthCodeData is the response of the test-only /oidc/authcode endpoint.
type AuthCodeData struct {
	AuthCode string `json:"authcode"`
}

// ErrorData is the JSON body of 4xx responses emitted by the proxy itself.
type ErrorData struct {
	Error string `json:"error"`
}
