package httpapi

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/storysync/internal/common"
	"github.com/dmitrijs2005/storysync/internal/server/services"
)

// multipartOverhead leaves room for the text fields next to the photo.
const multipartOverhead = 64 << 10

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

type loginResponse struct {
	envelope
	LoginResult loginResult `json:"loginResult"`
}

type storyItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	Lat         *float64  `json:"lat"`
	Lon         *float64  `json:"lon"`
}

type storiesResponse struct {
	envelope
	ListStory []storyItem `json:"listStory"`
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

func (h *Handler) Ping(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if _, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			jsonError(c, http.StatusConflict, "Email is already taken")
			return
		}
		h.fail(c, err)
		return
	}
	jsonOK(c, http.StatusCreated, "User created")
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "email and password are required")
		return
	}
	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		envelope:    envelope{Message: "success"},
		LoginResult: loginResult{UserID: res.UserID, Name: res.Name, Token: res.Token},
	})
}

func (h *Handler) ListStories(c *gin.Context) {
	limit := 0
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(c, http.StatusBadRequest, "size must be a positive integer")
			return
		}
		limit = n
	}

	views, err := h.stories.List(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]storyItem, 0, len(views))
	for _, v := range views {
		items = append(items, storyItem{
			ID:          v.ID,
			Name:        v.AuthorName,
			Description: v.Description,
			PhotoURL:    v.PhotoURL,
			CreatedAt:   v.CreatedAt,
			Lat:         v.Lat,
			Lon:         v.Lon,
		})
	}
	c.JSON(http.StatusOK, storiesResponse{
		envelope:  envelope{Message: "Stories fetched successfully"},
		ListStory: items,
	})
}

func (h *Handler) AddStory(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, common.MaxPhotoSize+multipartOverhead)

	fh, err := c.FormFile(common.PhotoFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(c, http.StatusRequestEntityTooLarge, "photo is too large")
			return
		}
		jsonError(c, http.StatusBadRequest, "photo is required")
		return
	}
	if fh.Size > common.MaxPhotoSize {
		jsonError(c, http.StatusRequestEntityTooLarge, "photo is too large")
		return
	}
	photo, err := readPart(fh)
	if err != nil {
		h.fail(c, err)
		return
	}

	in := services.NewStory{
		Description:      c.PostForm("description"),
		Photo:            photo,
		PhotoContentType: fh.Header.Get("Content-Type"),
		IdempotencyKey:   strings.TrimSpace(c.GetHeader(common.IdempotencyKeyHeader)),
	}
	if in.Lat, err = optionalFloat(c.PostForm("lat")); err != nil {
		jsonError(c, http.StatusBadRequest, "lat must be a number")
		return
	}
	if in.Lon, err = optionalFloat(c.PostForm("lon")); err != nil {
		jsonError(c, http.StatusBadRequest, "lon must be a number")
		return
	}

	_, created, err := h.stories.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !created {
		jsonOK(c, http.StatusOK, "Story already exists")
		return
	}
	jsonOK(c, http.StatusCreated, "Story created successfully")
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "endpoint is required")
		return
	}
	if _, err := h.subscriptions.Subscribe(c.Request.Context(), userID(c), req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		h.fail(c, err)
		return
	}
	jsonOK(c, http.StatusOK, "Success to subscribe web push notification.")
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "endpoint is required")
		return
	}
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), userID(c), req.Endpoint); err != nil {
		h.fail(c, err)
		return
	}
	jsonOK(c, http.StatusOK, "Success to unsubscribe web push notification.")
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	jsonError(c, status, msg)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, common.MaxPhotoSize+1))
}

func optionalFloat(v string) (*float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
