package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/taxlens/invoice-analyzer/constants"
	"github.com/taxlens/invoice-analyzer/internal/auth"
	"github.com/taxlens/invoice-analyzer/internal/common"
	"github.com/taxlens/invoice-analyzer/internal/entity"
	"github.com/taxlens/invoice-analyzer/internal/httpx"
)

type signupRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	AadhaarNumber string `json:"aadhaar_number"`
	Password      string `json:"password"`
	UserType      string `json:"user_type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.UserType == "" {
		req.UserType = "CA"
	}

	v := common.NewValidator()
	v.Field("name", req.Name, common.Required)
	v.Field("email", req.Email, common.Required)
	v.Field("password", req.Password, common.Required, common.MinLength(6))
	v.Field("aadhaar_number", req.AadhaarNumber, common.Required, common.ExactDigits(12))
	v.Field("user_type", req.UserType, common.OneOf(constants.UserTypes...))
	if v.HasErrors() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v.ErrorMessage())
		return
	}

	exists, err := s.users.ExistsByEmailOrAadhaar(r.Context(), req.Email, req.AadhaarNumber)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}
	if exists {
		httpx.JSONError(w, http.StatusConflict, "account_exists", "email or aadhaar number already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}
	user := &entity.User{
		Name:          req.Name,
		Email:         req.Email,
		AadhaarNumber: req.AadhaarNumber,
		PasswordHash:  hash,
		UserType:      req.UserType,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, userResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		UserType: user.UserType,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", "email and password required")
		return
	}

	user, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "login_failed", nil)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, userResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		UserType: user.UserType,
	})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
