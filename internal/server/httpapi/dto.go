package httpapi

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/memoir/internal/server/models"
)

// Nullable distinguishes an absent JSON key from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// patch converts n into the double pointer used by model patches.
func (n Nullable[T]) patch() **T {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// --- requests ---

type registerRequest struct {
	Username        string  `json:"username" validate:"required,min=3,max=50"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	ConfirmPassword string  `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	FirstName       *string `json:"firstName" validate:"omitempty,max=100"`
	LastName        *string `json:"lastName" validate:"omitempty,max=100"`
	Bio             *string `json:"bio" validate:"omitempty,max=2000"`
	ProfilePicture  *string `json:"profilePicture" validate:"omitempty,url"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type profileUpdateRequest struct {
	Email          *string `json:"email" validate:"omitempty,email"`
	FirstName      *string `json:"firstName" validate:"omitempty,max=100"`
	LastName       *string `json:"lastName" validate:"omitempty,max=100"`
	Bio            *string `json:"bio" validate:"omitempty,max=2000"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
}

type adminUserUpdateRequest struct {
	Role       *models.Role `json:"role" validate:"omitempty,oneof=user admin"`
	IsVerified *bool        `json:"isVerified"`
}

// categoryCreateRequest has no userId or isDefault: both are set by the
// server, and unknown keys are dropped by the decoder.
type categoryCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type categoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type memoryCreateRequest struct {
	Title      string            `json:"title" validate:"required,max=200"`
	Content    string            `json:"content" validate:"required"`
	ImageURL   *string           `json:"imageUrl" validate:"omitempty,url"`
	CategoryID *int64            `json:"categoryId" validate:"omitempty,gt=0"`
	Visibility models.Visibility `json:"visibility" validate:"omitempty,oneof=public private"`
}

type memoryUpdateRequest struct {
	Title      *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Content    *string            `json:"content" validate:"omitempty,min=1"`
	ImageURL   Nullable[string]   `json:"imageUrl"`
	CategoryID Nullable[int64]    `json:"categoryId"`
	Visibility *models.Visibility `json:"visibility" validate:"omitempty,oneof=public private"`
}

type imageUploadRequest struct {
	ContentType string `json:"contentType" validate:"required"`
}

// --- responses ---

// userView is a user as seen by themselves or an administrator.
type userView struct {
	ID             int64       `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	FirstName      *string     `json:"firstName"`
	LastName       *string     `json:"lastName"`
	Bio            *string     `json:"bio"`
	ProfilePicture *string     `json:"profilePicture"`
	IsVerified     bool        `json:"isVerified"`
	Role           models.Role `json:"role"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// publicProfileView is a user as seen by anyone else: no email.
type publicProfileView struct {
	ID             int64       `json:"id"`
	Username       string      `json:"username"`
	FirstName      *string     `json:"firstName"`
	LastName       *string     `json:"lastName"`
	Bio            *string     `json:"bio"`
	ProfilePicture *string     `json:"profilePicture"`
	IsVerified     bool        `json:"isVerified"`
	Role           models.Role `json:"role"`
	CreatedAt      time.Time   `json:"createdAt"`
}

type categoryView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	UserID      *int64    `json:"userId,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
}

type memoryView struct {
	ID         int64             `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	ImageURL   *string           `json:"imageUrl"`
	UserID     int64             `json:"userId"`
	CategoryID *int64            `json:"categoryId"`
	Visibility models.Visibility `json:"visibility"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type tokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         *userView `json:"user,omitempty"`
}

type imageUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newUserView(u *models.User) *userView {
	return &userView{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		IsVerified:     u.IsVerified,
		Role:           u.Role,
		CreatedAt:      u.CreatedAt,
	}
}

func newPublicProfileView(u *models.User) *publicProfileView {
	return &publicProfileView{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		IsVerified:     u.IsVerified,
		Role:           u.Role,
		CreatedAt:      u.CreatedAt,
	}
}

func newCategoryView(c *models.Category) *categoryView {
	return &categoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		UserID:      c.UserID,
		IsDefault:   c.IsDefault,
		CreatedAt:   c.CreatedAt,
	}
}

func newMemoryView(m *models.Memory) *memoryView {
	return &memoryView{
		ID:         m.ID,
		Title:      m.Title,
		Content:    m.Content,
		ImageURL:   m.ImageURL,
		UserID:     m.UserID,
		CategoryID: m.CategoryID,
		Visibility: m.Visibility,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func mapSlice[T, V any](in []T, f func(T) V) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
