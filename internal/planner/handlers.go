package planner

import (
	"errors"

	"gearplanner/internal/auth"
	"gearplanner/internal/gear"
	"gearplanner/internal/remote"
	"gearplanner/internal/shared/httperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/session", authMiddleware, func(c *fiber.Ctx) error {
		var profile remote.UserProfile
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&profile); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
			}
		}
		synced, err := svc.SyncUser(c.UserContext(), auth.UserID(c), profile)
		if err != nil {
			return respond(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(SessionResponse{UserID: auth.Subject(c), Synced: synced})
	})

	r.Delete("/session", authMiddleware, func(c *fiber.Ctx) error {
		svc.EndSession(auth.UserID(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/gear-lists", authMiddleware, func(c *fiber.Ctx) error {
		load := svc.LoadLists
		if c.QueryBool("cached") {
			load = svc.Lists
		}
		lists, err := load(c.UserContext(), auth.UserID(c))
		if err != nil {
			return respond(err)
		}
		return c.JSON(lists)
	})

	r.Post("/gear-lists", authMiddleware, func(c *fiber.Ctx) error {
		var form gear.ListForm
		if err := c.BodyParser(&form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
		}
		list, err := svc.CreateList(c.UserContext(), auth.UserID(c), form)
		if err != nil {
			return respond(err)
		}
		return c.Status(fiber.StatusCreated).JSON(list)
	})

	r.Get("/gear-lists/:listId", authMiddleware, func(c *fiber.Ctx) error {
		list, err := svc.GetList(c.UserContext(), auth.UserID(c), c.Params("listId"))
		if err != nil {
			return respond(err)
		}
		return c.JSON(list)
	})

	r.Get("/gear-lists/:listId/categories", authMiddleware, func(c *fiber.Ctx) error {
		view, err := svc.Categories(c.UserContext(), auth.UserID(c), c.Params("listId"))
		if err != nil {
			return respond(err)
		}
		return c.JSON(view)
	})

	r.Put("/gear-lists/:listId", authMiddleware, func(c *fiber.Ctx) error {
		var form gear.ListForm
		if err := c.BodyParser(&form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
		}
		list, err := svc.UpdateMetadata(c.UserContext(), auth.UserID(c), c.Params("listId"), form)
		if err != nil {
			return respond(err)
		}
		return c.JSON(list)
	})

	r.Delete("/gear-lists/:listId", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteList(c.UserContext(), auth.UserID(c), c.Params("listId")); err != nil {
			return respond(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/gear-lists/:listId/items", authMiddleware, func(c *fiber.Ctx) error {
		var form gear.ItemForm
		if err := c.BodyParser(&form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
		}
		res, err := svc.AddItem(c.UserContext(), auth.UserID(c), c.Params("listId"), form)
		if err != nil {
			return respond(err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	r.Put("/gear-lists/:listId/items/:itemId", authMiddleware, func(c *fiber.Ctx) error {
		var edit gear.ItemEdit
		if err := c.BodyParser(&edit); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
		}
		list, err := svc.EditItem(c.UserContext(), auth.UserID(c), c.Params("listId"), c.Params("itemId"), edit)
		if err != nil {
			return respond(err)
		}
		return c.JSON(list)
	})

	r.Post("/gear-lists/:listId/items/:itemId/packed", authMiddleware, func(c *fiber.Ctx) error {
		var req PackedRequest
		if err := c.BodyParser(&req); err != nil || req.Packed == nil {
			return fiber.NewError(fiber.StatusBadRequest, "packed is required")
		}
		list, err := svc.TogglePacked(c.UserContext(), auth.UserID(c), c.Params("listId"), c.Params("itemId"), *req.Packed)
		if err != nil {
			return respond(err)
		}
		return c.JSON(list)
	})

	r.Delete("/gear-lists/:listId/items/:itemId", authMiddleware, func(c *fiber.Ctx) error {
		list, err := svc.DeleteItem(c.UserContext(), auth.UserID(c), c.Params("listId"), c.Params("itemId"))
		if err != nil {
			return respond(err)
		}
		return c.JSON(list)
	})

	r.Get("/common-gear", authMiddleware, func(c *fiber.Ctx) error {
		groups, err := svc.Suggestions(c.UserContext(), auth.UserID(c), c.Query("q"), c.Query("listId"))
		if err != nil {
			return respond(err)
		}
		return c.JSON(groups)
	})
}

func respond(err error) error {
	switch {
	case errors.Is(err, ErrItemNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Gear item not found.")
	case errors.Is(err, ErrStoreUnavailable):
		return fiber.NewError(fiber.StatusInternalServerError, "Your gear lists are not available right now.")
	}
	return httperr.From(err)
}
