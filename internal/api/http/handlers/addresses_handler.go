package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/phonebook/internal/api/dto"
	"github.com/spec-kit/phonebook/internal/domain"
	"github.com/spec-kit/phonebook/internal/service"
)

// AddressesHandler manages shared addresses.
type AddressesHandler struct {
	service *service.AddressService
}

// NewAddressesHandler constructs handler.
func NewAddressesHandler(addressService *service.AddressService) *AddressesHandler {
	return &AddressesHandler{service: addressService}
}

func (h *AddressesHandler) Create(c *fiber.Ctx) error {
	var req dto.AddressRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	address, err := h.service.Create(c.UserContext(), addressInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": address})
}

func (h *AddressesHandler) List(c *fiber.Ctx) error {
	query := service.AddressQuery{
		City:       optionalQuery(c, "city"),
		Province:   optionalQuery(c, "province"),
		Country:    optionalQuery(c, "country"),
		PostalCode: optionalQuery(c, "postal_code"),
		Page:       pageRequest(c),
	}
	page, err := h.service.Search(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(dto.PagingResponse[domain.Address]{
		Data:        page.Items,
		CurrentPage: page.Page,
		TotalPage:   page.TotalPages,
		Size:        page.Size,
		Total:       page.Total,
	})
}

func (h *AddressesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "address")
	if err != nil {
		return err
	}
	address, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": address})
}

func (h *AddressesHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "address")
	if err != nil {
		return err
	}
	var req dto.AddressRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	address, err := h.service.Update(c.UserContext(), id, addressInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": address})
}

func (h *AddressesHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "address")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": "OK"})
}

func addressInput(req dto.AddressRequest) service.AddressInput {
	return service.AddressInput{
		City:       req.City,
		Province:   req.Province,
		Country:    req.Country,
		PostalCode: req.PostalCode,
	}
}
