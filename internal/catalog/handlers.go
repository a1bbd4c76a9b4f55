package catalog

import (
	"gearplanner/internal/shared/httperr"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the public article routes.
func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/articles", func(c *fiber.Ctx) error {
		articles, err := svc.Articles(c.UserContext())
		if err != nil {
			return httperr.From(err)
		}
		return c.JSON(articles)
	})

	r.Get("/articles/:articleId", func(c *fiber.Ctx) error {
		article, err := svc.Article(c.UserContext(), c.Params("articleId"))
		if err != nil {
			return httperr.From(err)
		}
		return c.JSON(article)
	})
}
