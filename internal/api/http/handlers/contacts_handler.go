package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/phonebook/internal/api/dto"
	"github.com/spec-kit/phonebook/internal/service"
)

// ContactsHandler manages the caller's contacts.
type ContactsHandler struct {
	service *service.ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contactService *service.ContactService) *ContactsHandler {
	return &ContactsHandler{service: contactService}
}

// Create POST /api/contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	contact, err := h.service.Create(c.UserContext(), p.IdentityID, contactInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// List GET /api/contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	query := service.ContactQuery{
		Name:   optionalQuery(c, "name"),
		Phone:  optionalQuery(c, "phone"),
		Email:  optionalQuery(c, "email"),
		Street: optionalQuery(c, "street"),
		Page:   pageRequest(c),
	}

	page, err := h.service.Search(c.UserContext(), p.IdentityID, query)
	if err != nil {
		return err
	}
	items := make([]dto.ContactResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewContactResponse(&page.Items[i]))
	}
	return c.JSON(dto.PagingResponse[dto.ContactResponse]{
		Data:        items,
		CurrentPage: page.Page,
		TotalPage:   page.TotalPages,
		Size:        page.Size,
		Total:       page.Total,
	})
}

// Get GET /api/contacts/:id.
func (h *ContactsHandler) Get(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "contact")
	if err != nil {
		return err
	}

	contact, err := h.service.Get(c.UserContext(), p.IdentityID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Update PUT /api/contacts/:id.
func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "contact")
	if err != nil {
		return err
	}
	var req dto.ContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	contact, err := h.service.Update(c.UserContext(), p.IdentityID, id, contactInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Delete DELETE /api/contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "contact")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), p.IdentityID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": "OK"})
}

func contactInput(req dto.ContactRequest) service.ContactInput {
	return service.ContactInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Street:    req.Street,
		AddressID: req.AddressID,
	}
}
