package api

import (
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/edgestore/customerstore/customer"
	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/model"
	"github.com/edgestore/customerstore/internal/server"
	"github.com/edgestore/customerstore/internal/server/stats"
	"github.com/edgestore/customerstore/version"
	"github.com/gin-gonic/gin"
)

const Prefix = "/api/v1"

const DefaultPaginationLimit = 10

func NewPagination(ctx *gin.Context) *model.Pagination {
	perPage, _ := strconv.Atoi(ctx.DefaultQuery("per_page", strconv.Itoa(DefaultPaginationLimit)))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "0"))
	return model.NewPagination(perPage, page)
}

// Event is the wire form of a customer event.
type Event struct {
	Type string         `json:"type"`
	Data customer.Event `json:"data"`
}

func NewEvents(events []customer.Event) []Event {
	result := make([]Event, len(events))
	for i, event := range events {
		eventType, _ := model.EventType(event)
		result[i] = Event{Type: eventType, Data: event}
	}

	return result
}

type RegisterForm struct {
	EmailAddress string `json:"email_address" form:"email_address" binding:"required"`
	GivenName    string `json:"given_name" form:"given_name" binding:"required"`
	FamilyName   string `json:"family_name" form:"family_name" binding:"required"`
}

type ConfirmationForm struct {
	ConfirmationHash string `json:"confirmation_hash" form:"confirmation_hash" binding:"required"`
}

type EmailForm struct {
	EmailAddress string `json:"email_address" form:"email_address" binding:"required"`
}

type NameForm struct {
	GivenName  string `json:"given_name" form:"given_name" binding:"required"`
	FamilyName string `json:"family_name" form:"family_name" binding:"required"`
}

func (s *service) AbortWithError(ctx *gin.Context, err error) {
	res := ER(err)
	if res.Code >= http.StatusInternalServerError {
		s.logger.Error(err)
	} else {
		s.logger.Debug(err)
	}
	ctx.AbortWithStatusJSON(res.Code, res)
}

func (s *service) HTTPHandler() http.Handler {
	handler := gin.New()
	handler.Use(gin.Recovery())

	handler.Use(server.CORSHandler())
	handler.Use(server.RequestIDHandler())
	handler.Use(server.LoggerHandler(s.logger, time.RFC3339, true))
	handler.NoRoute(server.NotFoundHandler)
	handler.GET("/", s.RootHandler)
	handler.GET("/stats", s.StatsHandler)

	tenant := NewTenantMiddleware()
	if s.cfg.JWTSecret != "" {
		tenant = NewJWTMiddleware(s.cfg.JWTSecret)
	}

	api := handler.Group(Prefix).Use(tenant, server.NoCacheHandler())
	api.POST("/customers", s.RegisterCustomerHandler)
	api.GET("/customers/:id", s.GetCustomerHandler)
	api.GET("/customers/:id/events", s.GetCustomerEventsHandler)
	api.POST("/customers/:id/confirmation", s.ConfirmEmailAddressHandler)
	api.PUT("/customers/:id/email", s.ChangeEmailAddressHandler)
	api.PUT("/customers/:id/name", s.ChangeNameHandler)

	return handler
}

func (s *service) StatsHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, stats.GetStats(version.Version))
}

func (s *service) RegisterCustomerHandler(ctx *gin.Context) {
	const op errors.Op = "api/service.RegisterCustomerHandler"

	var form RegisterForm
	if err := ctx.ShouldBind(&form); err != nil {
		s.AbortWithError(ctx, errors.E(op, errors.Invalid, err))
		return
	}

	tenant := model.ID(ctx.GetString(TenantKey))
	cmd := customer.NewRegisterCustomer(tenant, customer.EmailAddress(form.EmailAddress), form.GivenName, form.FamilyName)

	events, err := s.customer.Register(ctx, cmd)
	if err != nil {
		s.AbortWithError(ctx, err)
		return
	}

	ctx.Header("Location", path.Join(Prefix, "customers", string(cmd.ID)))
	ctx.JSON(http.StatusCreated, gin.H{
		"id":                cmd.ID,
		"confirmation_hash": cmd.ConfirmationHash,
		"events":            NewEvents(events),
	})
}

func (s *service) GetCustomerHandler(ctx *gin.Context) {
	const op errors.Op = "api/service.GetCustomerHandler"

	tenant := model.ID(ctx.GetString(TenantKey))
	id := model.ID(ctx.Param("id"))

	var (
		c   *customer.Customer
		err error
	)
	if at, ok := ctx.GetQuery("at"); ok {
		t, perr := time.Parse(time.RFC3339, at)
		if perr != nil {
			s.AbortWithError(ctx, errors.E(op, errors.Invalid, "at must be an RFC 3339 timestamp"))
			return
		}
		c, err = s.customer.GetCustomerAt(ctx, id, tenant, t)
	} else {
		c, err = s.customer.GetCustomer(ctx, id, tenant)
	}

	if err != nil {
		s.AbortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (s *service) GetCustomerEventsHandler(ctx *gin.Context) {
	tenant := model.ID(ctx.GetString(TenantKey))
	id := model.ID(ctx.Param("id"))

	events, err := s.customer.History(ctx, id, tenant)
	if err != nil {
		s.AbortWithError(ctx, err)
		return
	}

	pagination := NewPagination(ctx)
	start, end := pagination.Bounds(len(events))

	ctx.JSON(http.StatusOK, gin.H{
		"total":  len(events),
		"events": NewEvents(events[start:end]),
	})
}

func (s *service) ConfirmEmailAddressHandler(ctx *gin.Context) {
	const op errors.Op = "api/service.ConfirmEmailAddressHandler"

	var form ConfirmationForm
	if err := ctx.ShouldBind(&form); err != nil {
		s.AbortWithError(ctx, errors.E(op, errors.Invalid, err))
		return
	}

	tenant := model.ID(ctx.GetString(TenantKey))
	cmd := customer.NewConfirmEmailAddress(tenant, model.ID(ctx.Param("id")), customer.Hash(form.ConfirmationHash))

	events, err := s.customer.ConfirmEmailAddress(ctx, cmd)
	if err != nil {
		s.AbortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"events": NewEvents(events)})
}

func (s *service) ChangeEmailAddressHandler(ctx *gin.Context) {
	const op errors.Op = "api/service.ChangeEmailAddressHandler"

	var form EmailForm
	if err := ctx.ShouldBind(&form); err != nil {
		s.AbortWithError(ctx, errors.E(op, errors.Invalid, err))
		return
	}

	tenant := model.ID(ctx.GetString(TenantKey))
	cmd := customer.NewChangeEmailAddress(tenant, model.ID(ctx.Param("id")), customer.EmailAddress(form.EmailAddress))

	events, err := s.customer.ChangeEmailAddress(ctx, cmd)
	if err != nil {
		s.AbortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"events": NewEvents(events)})
}

func (s *service) ChangeNameHandler(ctx *gin.Context) {
	const op errors.Op = "api/service.ChangeNameHandler"

	var form NameForm
	if err := ctx.ShouldBind(&form); err != nil {
		s.AbortWithError(ctx, errors.E(op, errors.Invalid, err))
		return
	}

	tenant := model.ID(ctx.GetString(TenantKey))
	cmd := customer.NewChangeName(tenant, model.ID(ctx.Param("id")), form.GivenName, form.FamilyName)

	events, err := s.customer.ChangeName(ctx, cmd)
	if err != nil {
		s.AbortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"events": NewEvents(events)})
}
