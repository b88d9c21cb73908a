package api

import "github.com/gofiber/fiber/v3"

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func success(c fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(envelope{Status: status, Message: "success", Data: data})
}

func failure(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(envelope{Status: status, Message: message, Data: nil})
}
