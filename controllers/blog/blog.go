package blog

import (
	"errors"

	"healthcare-booking/middleware"
	blogService "healthcare-booking/services/blog"
	"healthcare-booking/services/storage"
	"healthcare-booking/types"
	blogTypes "healthcare-booking/types/blog"
	"healthcare-booking/utils"

	"github.com/gofiber/fiber/v2"
)

type BlogController struct {
	service *blogService.Service
}

func NewBlogController(service *blogService.Service) *BlogController {
	return &BlogController{service: service}
}

func fail(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, blogService.ErrNotFound):
		return utils.RespondError(c, fiber.StatusNotFound, "Blog post not found")
	case errors.Is(err, blogService.ErrForbidden):
		return utils.RespondError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, blogService.ErrSlugTaken),
		errors.Is(err, blogService.ErrEmptyTerm),
		errors.Is(err, storage.ErrUnsupportedType):
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrDisabled):
		return utils.RespondError(c, fiber.StatusServiceUnavailable, "File uploads are not available")
	default:
		return utils.RespondServerError(c, "Failed to "+action, err)
	}
}

// viewer is the session account, or the anonymous zero Actor.
func viewer(c *fiber.Ctx) blogService.Actor {
	if acct := middleware.CurrentAccount(c); acct != nil {
		return blogService.Actor{ID: acct.ID, Role: acct.Role}
	}
	return blogService.Actor{}
}

func (h *BlogController) respondPage(c *fiber.Ctx, page *blogService.Page) error {
	return utils.RespondPage(c, "Blog posts retrieved", page.Items, types.NewPagination(page.Page, page.Limit, page.Total))
}

func (h *BlogController) List(c *fiber.Ctx) error {
	var q blogTypes.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	page, err := h.service.List(c.UserContext(), q)
	if err != nil {
		return fail(c, "list blog posts", err)
	}
	return h.respondPage(c, page)
}

func (h *BlogController) Search(c *fiber.Ctx) error {
	var q blogTypes.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	page, err := h.service.Search(c.UserContext(), q)
	if err != nil {
		return fail(c, "search blog posts", err)
	}
	return h.respondPage(c, page)
}

func (h *BlogController) Popular(c *fiber.Ctx) error {
	posts, err := h.service.Popular(c.UserContext(), c.QueryInt("limit"))
	if err != nil {
		return fail(c, "load popular posts", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Popular posts retrieved", posts)
}

func (h *BlogController) GetBySlug(c *fiber.Ctx) error {
	post, err := h.service.GetBySlug(c.UserContext(), c.Params("slug"), viewer(c))
	if err != nil {
		return fail(c, "load blog post", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Blog post retrieved", post)
}

func (h *BlogController) Like(c *fiber.Ctx) error {
	likes, err := h.service.Like(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, "like blog post", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Blog post liked", fiber.Map{"likes": likes})
}

func (h *BlogController) Share(c *fiber.Ctx) error {
	shares, err := h.service.Share(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, "share blog post", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Blog post shared", fiber.Map{"shares": shares})
}

func (h *BlogController) Create(c *fiber.Ctx) error {
	var req blogTypes.CreateRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	post, err := h.service.Create(c.UserContext(), viewer(c), req)
	if err != nil {
		return fail(c, "create blog post", err)
	}
	return utils.Respond(c, fiber.StatusCreated, "Blog post created", post)
}

func (h *BlogController) Update(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	var req blogTypes.UpdateRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	post, err := h.service.Update(c.UserContext(), id, viewer(c), req)
	if err != nil {
		return fail(c, "update blog post", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Blog post updated", post)
}

func (h *BlogController) Publish(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	post, err := h.service.Publish(c.UserContext(), id, viewer(c))
	if err != nil {
		return fail(c, "publish blog post", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Blog post published", post)
}

func (h *BlogController) Archive(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	post, err := h.service.Archive(c.UserContext(), id, viewer(c))
	if err != nil {
		return fail(c, "archive blog post", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Blog post archived", post)
}

func (h *BlogController) Delete(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.Delete(c.UserContext(), id, viewer(c)); err != nil {
		return fail(c, "delete blog post", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Blog post deleted", nil)
}

func (h *BlogController) UploadFeaturedImage(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	file, contentType, err := utils.FormImage(c, "image")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	defer file.Close()

	post, err := h.service.UploadFeaturedImage(c.UserContext(), id, viewer(c), contentType, file)
	if err != nil {
		return fail(c, "upload featured image", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Featured image uploaded", post)
}
