package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/pkg/api"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseRequestHandler struct {
	requestService service.PurchaseRequestService
	auth           *middleware.AuthMiddleware
}

func NewPurchaseRequestHandler(requestService service.PurchaseRequestService, auth *middleware.AuthMiddleware) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{requestService: requestService, auth: auth}
}

func (h *PurchaseRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	managerOnly := middleware.RequireRole(api.RoleManager)

	requests := router.Group("/richieste", h.auth.RequireAuth())
	{
		requests.GET("", h.ListRequests)
		requests.POST("", h.CreateRequest)
		requests.GET("/pending/approve", managerOnly, h.ListPending)
		requests.GET("/processed", managerOnly, h.ListProcessed)
		requests.GET("/:id", h.GetRequest)
		requests.PUT("/:id", h.UpdateRequest)
		requests.DELETE("/:id", h.DeleteRequest)
		requests.PUT("/:id/approve", managerOnly, h.Approve)
		requests.PUT("/:id/reject", managerOnly, h.Reject)
		requests.PUT("/:id/status", managerOnly, h.ChangeStatus)
	}
}

// ListRequests returns every request for managers and the caller's own for employees.
// @Summary      List purchase requests
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]api.PurchaseRequest}
// @Router       /richieste [get]
func (h *PurchaseRequestHandler) ListRequests(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	requests, err := h.requestService.List(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// @Summary      List pending requests
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]api.PurchaseRequest}
// @Failure      403  {object}  response.Response
// @Router       /richieste/pending/approve [get]
func (h *PurchaseRequestHandler) ListPending(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	requests, err := h.requestService.ListPending(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// @Summary      List approved and rejected requests
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]api.PurchaseRequest}
// @Failure      403  {object}  response.Response
// @Router       /richieste/processed [get]
func (h *PurchaseRequestHandler) ListProcessed(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	requests, err := h.requestService.ListProcessed(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// @Summary      Get purchase request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=api.PurchaseRequest}
// @Failure      404  {object}  response.Response
// @Router       /richieste/{id} [get]
func (h *PurchaseRequestHandler) GetRequest(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	req, err := h.requestService.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// CreateRequest files a new request for the caller. Any cost in the body is
// ignored and recomputed from the category.
// @Summary      Create purchase request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      api.PurchaseRequestInput  true  "Request"
// @Success      201      {object}  response.Response{data=api.PurchaseRequest}
// @Failure      400      {object}  response.Response
// @Router       /richieste [post]
func (h *PurchaseRequestHandler) CreateRequest(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req api.PurchaseRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.requestService.Create(c.Request.Context(), a, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// @Summary      Update purchase request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Request ID"
// @Param        payload  body      api.PurchaseRequestInput  true  "Request"
// @Success      200      {object}  response.Response{data=api.PurchaseRequest}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /richieste/{id} [put]
func (h *PurchaseRequestHandler) UpdateRequest(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req api.PurchaseRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.requestService.Update(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// @Summary      Delete purchase request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /richieste/{id} [delete]
func (h *PurchaseRequestHandler) DeleteRequest(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.requestService.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Request deleted"}))
}

// Approve handles PUT /richieste/:id/approve
// @Summary      Approve purchase request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=api.PurchaseRequest}
// @Failure      409  {object}  response.Response
// @Router       /richieste/{id}/approve [put]
func (h *PurchaseRequestHandler) Approve(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	req, err := h.requestService.Approve(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// Reject handles PUT /richieste/:id/reject
// @Summary      Reject purchase request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=api.PurchaseRequest}
// @Failure      409  {object}  response.Response
// @Router       /richieste/{id}/reject [put]
func (h *PurchaseRequestHandler) Reject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	req, err := h.requestService.Reject(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// ChangeStatus sets any status, including back to pending.
// @Summary      Change request status
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Request ID"
// @Param        payload  body      api.ChangeStatusRequest  true  "Target status"
// @Success      200      {object}  response.Response{data=api.PurchaseRequest}
// @Failure      400      {object}  response.Response
// @Router       /richieste/{id}/status [put]
func (h *PurchaseRequestHandler) ChangeStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req api.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.requestService.ChangeStatus(c.Request.Context(), a, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}
