package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

var weatherClient = &http.Client{Timeout: 10 * time.Second}

// GetWeather proxies OpenWeather so the API key never reaches the browser.
// The upstream payload is returned verbatim.
func GetWeather(c *fiber.Ctx) error {
	lat := c.Query("lat")
	lon := c.Query("lon")
	if lat == "" || lon == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "lat and lon query parameters are required",
		})
	}

	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Weather service not configured",
		})
	}

	upstream := fmt.Sprintf(
		"https://api.openweathermap.org/data/2.5/weather?lat=%s&lon=%s&units=metric&appid=%s",
		url.QueryEscape(lat), url.QueryEscape(lon), url.QueryEscape(apiKey),
	)

	resp, err := weatherClient.Get(upstream)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Weather service unavailable",
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Weather service unavailable",
		})
	}

	c.Set("Content-Type", "application/json")
	return c.Status(resp.StatusCode).Send(body)
}
