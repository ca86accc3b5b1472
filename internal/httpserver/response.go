package httpserver

import "github.com/labstack/echo/v4"

// Envelope wraps every successful response body.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	MessageKey string `json:"messageKey"`
	Data       any    `json:"data"`
}

func respond(c echo.Context, status int, key, message string, data any) error {
	return c.JSON(status, Envelope{
		StatusCode: status,
		Message:    message,
		MessageKey: key,
		Data:       data,
	})
}
