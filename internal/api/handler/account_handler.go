package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"smart_toll/internal/domain"
	"smart_toll/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const maxPlateImageBytes = 10 << 20

type AccountService interface {
	Register(ctx context.Context, dto domain.CreateAccountDTO) (*domain.Account, error)
	GetAccount(ctx context.Context, email string) (*domain.Account, error)
	GetBalance(ctx context.Context, email string) (float64, error)
	AddFunds(ctx context.Context, email string, funds float64) (float64, error)
	RegisterPlate(ctx context.Context, email string, image []byte) (string, error)
	ListPlates(ctx context.Context, email string) ([]domain.RegisteredPlate, error)
}

// AccountHandler serves the owner-facing account API used by the mobile app.
type AccountHandler struct {
	accounts AccountService
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// POST /add_user
func (h *AccountHandler) AddUser(c *gin.Context) {
	var dto domain.CreateAccountDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, err := h.accounts.Register(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, service.ErrAccountExists) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User added successfully", "user": account})
}

// GET /get_user_info?email=
func (h *AccountHandler) GetUserInfo(c *gin.Context) {
	account, err := h.accounts.GetAccount(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, []string{account.Name, account.Email, account.Phone.String, account.Address.String})
}

// GET /get_balance?email=
func (h *AccountHandler) GetBalance(c *gin.Context) {
	amount, err := h.accounts.GetBalance(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.String(http.StatusOK, strconv.FormatFloat(amount, 'f', -1, 64))
}

// GET /update_balance?email=&funds=
func (h *AccountHandler) UpdateBalance(c *gin.Context) {
	funds, err := strconv.ParseFloat(c.Query("funds"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "funds must be a number"})
		return
	}
	if _, err := h.accounts.AddFunds(c.Request.Context(), c.Query("email"), funds); err != nil {
		h.fail(c, err)
		return
	}
	c.String(http.StatusOK, "done")
}

// GET /my_cars?email=
func (h *AccountHandler) MyCars(c *gin.Context) {
	plates, err := h.accounts.ListPlates(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(plates) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No license plates found for this email"})
		return
	}
	c.JSON(http.StatusOK, plates)
}

// POST /add_license_plate (multipart: email, image)
func (h *AccountHandler) AddLicensePlate(c *gin.Context) {
	email := c.PostForm("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	image, err := readUpload(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided", "details": err.Error()})
		return
	}

	key, err := h.accounts.RegisterPlate(c.Request.Context(), email, image)
	if err != nil {
		h.fail(c, err)
		return
	}
	log.Printf("AccountHandler: registered plate '%s' for %s", key, email)
	c.String(http.StatusOK, "done")
}

func (h *AccountHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("AccountHandler: %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": errorMessage(err), "details": err.Error()})
}

// readUpload keeps the upload in memory; nothing is written to disk.
func readUpload(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	if fh.Size > maxPlateImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxPlateImageBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPlateImageBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	return data, nil
}
