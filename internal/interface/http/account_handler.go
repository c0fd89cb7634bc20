package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-rest-service/internal/domain/entity"
	"github.com/oksasatya/account-rest-service/pkg/response"
	"github.com/oksasatya/account-rest-service/pkg/validation"
)

// AccountService is the use-case surface the handlers depend on.
type AccountService interface {
	Create(ctx context.Context, in entity.AccountInput) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
	Get(ctx context.Context, id int64) (*entity.Account, error)
	Update(ctx context.Context, id int64, in entity.AccountInput) (*entity.Account, error)
	Delete(ctx context.Context, id int64) error
	SearchAccounts(ctx context.Context, q string, size int) ([]map[string]any, error)
}

type AccountHandler struct {
	Svc    AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

func (h *AccountHandler) Create(c *gin.Context) {
	in, ok := h.decodeAccount(c)
	if !ok {
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	response.JSON(c, http.StatusCreated, a.Serialize())
}

func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	out := make([]map[string]any, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Serialize())
	}
	response.JSON(c, http.StatusOK, out)
}

func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	a, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	response.JSON(c, http.StatusOK, a.Serialize())
}

// Update resolves the account before looking at the body, so an unknown id
// is a 404 even when the payload is invalid.
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	if _, err := h.Svc.Get(c.Request.Context(), id); err != nil {
		h.fail(c, "update", err)
		return
	}
	in, ok := h.decodeAccount(c)
	if !ok {
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	response.JSON(c, http.StatusOK, a.Serialize())
}

func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// nothing by that id can exist
		response.NoContent(c)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete", err)
		return
	}
	response.NoContent(c)
}

func (h *AccountHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			first := validation.Fields(err)[0]
			response.Error(c, http.StatusBadRequest, first.Field+" "+first.Message, validation.ToDetails(err))
			return
		}
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", nil)
		return
	}
	hits, err := h.Svc.SearchAccounts(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		h.fail(c, "search", err)
		return
	}
	response.JSON(c, http.StatusOK, hits)
}

// decodeAccount reads the request body into an AccountInput. It writes the
// 400 response itself and returns false when the body is unusable.
func (h *AccountHandler) decodeAccount(c *gin.Context) (entity.AccountInput, bool) {
	var in entity.AccountInput

	raw, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		response.Error(c, http.StatusBadRequest, "No data provided", nil)
		return in, false
	}

	var shape any
	if err := json.Unmarshal(raw, &shape); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid JSON format", nil)
		return in, false
	}
	switch v := shape.(type) {
	case nil:
		response.Error(c, http.StatusBadRequest, "No data provided", nil)
		return in, false
	case map[string]any:
		if len(v) == 0 {
			response.Error(c, http.StatusBadRequest, "No data provided", nil)
			return in, false
		}
	default:
		response.Error(c, http.StatusBadRequest, "Invalid JSON format", nil)
		return in, false
	}

	if err := json.Unmarshal(raw, &in); err != nil {
		first := validation.Fields(err)[0]
		response.Error(c, http.StatusBadRequest, first.Field+" "+first.Message, validation.ToDetails(err))
		return in, false
	}
	return in, true
}

func accountID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, (&entity.NotFoundError{ID: raw}).Error(), nil)
		return 0, false
	}
	return id, true
}

// fail maps service errors to status codes. Only unexpected errors are logged.
func (h *AccountHandler) fail(c *gin.Context, op string, err error) {
	var (
		ve *entity.ValidationError
		nf *entity.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		response.Error(c, http.StatusBadRequest, ve.Error(), ve.Details)
	case errors.Is(err, entity.ErrDuplicateEmail):
		response.Error(c, http.StatusBadRequest, "Account with this email already exists", nil)
	case errors.As(err, &nf):
		response.Error(c, http.StatusNotFound, nf.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"op":         op,
			}).Error("account request failed")
		}
		response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
