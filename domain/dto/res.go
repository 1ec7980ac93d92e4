package dto

// Res is the generic error envelope returned by the middleware.
type Res struct {
	ResponseCode    string `json:"response_code"`
	ResponseMessage string `json:"response_message"`
}
