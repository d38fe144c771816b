package handler

import (
	"github.com/labstack/echo/v4"
)

// envelope is the uniform JSON body shape for successful responses.
type envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, envelope{Status: "success", Data: data})
}

// respondList includes a result count alongside the collection.
func respondList(c echo.Context, code int, count int, data any) error {
	return c.JSON(code, envelope{Status: "success", Results: &count, Data: data})
}
