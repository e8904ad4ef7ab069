package dto

// TopUpRequest starts a wallet deposit.
type TopUpRequest struct {
	Amount float64 `json:"amount"`
}

// DeviceTokenRequest registers a push token.
type DeviceTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// PushRequest is a push message forwarded by the UI shell.
type PushRequest struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
