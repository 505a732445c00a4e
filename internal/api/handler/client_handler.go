package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/centralauth/centralauth/internal/api/response"
	"github.com/centralauth/centralauth/internal/core/ports"
)

// ClientHandler handles HTTP requests for the OAuth client registry.
type ClientHandler struct {
	clientService ports.ClientService
}

func NewClientHandler(clientService ports.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create registers a new OAuth client. The response carries the plaintext
// secret for confidential clients; it is shown exactly once.
//
// @Summary      Create an OAuth client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      clientRequest  true  "Client details"
// @Success      201   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	detail, err := h.clientService.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, "Client created successfully", clientDetailFromResult(detail))
}

// List returns all registered clients without secrets.
//
// @Summary      List OAuth clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope
// @Router       /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	clients, total, err := h.clientService.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]clientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, clientFromDomain(&clients[i]))
	}

	return response.Success(c, http.StatusOK, "Clients retrieved successfully", listClientsResponse{
		Clients: out,
		Total:   total,
	})
}

// Get returns a single client by internal id, without its secret.
//
// @Summary      Get an OAuth client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Internal client id"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	client, err := h.clientService.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Client retrieved successfully", clientFromDomain(client))
}

// Update mutates all non-credential fields.
//
// @Summary      Update an OAuth client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Internal client id"
// @Param        body  body      clientRequest  true  "Client details"
// @Success      200   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.clientService.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, "Client updated successfully", clientFromDomain(client))
}

// Delete removes a client permanently. Tokens bound to it stop working
// immediately.
//
// @Summary      Delete an OAuth client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Internal client id"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	if err := h.clientService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Client deleted successfully", deleteClientResponse{Success: true})
}

// RegenerateSecret mints a new secret for a confidential client, addressed by
// internal id (admin flow).
//
// @Summary      Regenerate a client secret
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Internal client id"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Failure      422  {object}  response.Envelope
// @Router       /clients/{id}/regenerate-secret [post]
func (h *ClientHandler) RegenerateSecret(c echo.Context) error {
	detail, err := h.clientService.RegenerateSecret(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Client secret regenerated successfully", clientDetailFromResult(detail))
}

// RegenerateSecretByClientID is the self-service recovery path, addressed by
// the public client_id. Same invariant and one-time reveal as the admin flow;
// the route is rate-limited instead of authenticated.
//
// @Summary      Recover a client secret by client_id
// @Tags         clients
// @Produce      json
// @Param        client_id  path      string  true  "Public client_id"
// @Success      200        {object}  response.Envelope
// @Failure      404        {object}  response.Envelope
// @Failure      422        {object}  response.Envelope
// @Failure      429        {object}  response.Envelope
// @Router       /clients/regenerate-secret/{client_id} [post]
func (h *ClientHandler) RegenerateSecretByClientID(c echo.Context) error {
	clientID := c.Param("client_id")
	if clientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "client_id parameter is required")
	}

	detail, err := h.clientService.RegenerateSecretByClientID(c.Request().Context(), clientID)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Client secret regenerated successfully", clientDetailFromResult(detail))
}
