package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"streetsense-be/services"
	authUtils "streetsense-be/utils"
)

// AuthController holds the handlers for registration, login and /me.
type AuthController struct {
	logger    *zap.Logger
	auth      *services.AuthService
	jwtSecret string
}

func NewAuthController(logger *zap.Logger, auth *services.AuthService, jwtSecret string) *AuthController {
	return &AuthController{
		logger:    logger,
		auth:      auth,
		jwtSecret: jwtSecret,
	}
}

// SendOTP handles POST /api/users/register/send-otp
func (ac *AuthController) SendOTP(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ac.auth.SendRegistrationCode(c.Request.Context(), input.Email); err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		case errors.Is(err, services.ErrEmailDispatch):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to send OTP email"})
		default:
			ac.logger.Error("send otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully", "email": input.Email})
}

// VerifyRegistration handles POST /api/users/register/verify
func (ac *AuthController) VerifyRegistration(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
		OTP      string `json:"otp" binding:"required,len=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.auth.CompleteRegistration(c.Request.Context(), services.RegistrationInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
		Address:  input.Address,
		Code:     input.OTP,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "OTP expired or not found"})
		case errors.Is(err, services.ErrCodeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
		case errors.Is(err, services.ErrAlreadyRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		default:
			ac.logger.Error("verify registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		}
		return
	}

	token, err := authUtils.GenerateToken(ac.jwtSecret, user.ID.Hex(), user.Role)
	if err != nil {
		ac.logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user.Public(),
	})
}

// Login handles POST /api/users/login
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		ac.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	token, err := authUtils.GenerateToken(ac.jwtSecret, user.ID.Hex(), user.Role)
	if err != nil {
		ac.logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.Public(),
	})
}

// GetMe handles GET /api/users/me
func (ac *AuthController) GetMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := ac.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		ac.logger.Error("get me failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// currentUserID reads the authenticated identity set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, errors.New("user not authenticated")
	}
	idStr, ok := userID.(string)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid user identity")
	}
	return primitive.ObjectIDFromHex(idStr)
}
