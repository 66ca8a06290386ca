package http

import (
	"errors"
	"net/http"

	"github.com/codeclimbers/leetboard/internal/infrastructure/validate"
	"github.com/codeclimbers/leetboard/internal/user"
	"github.com/labstack/echo/v4"
)

// UserHandler registration and the cumulative board
type UserHandler struct {
	UserUseCase user.UserUseCase
	Validator   validate.Validator
}

// NewUserHandler create an user controller instance
func NewUserHandler(UserUseCase user.UserUseCase, Validator validate.Validator) *UserHandler {
	return &UserHandler{
		UserUseCase: UserUseCase,
		Validator:   Validator,
	}
}

type registerUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

// HandleAddUser register a username to track. The profile must exist on
// the activity provider; a duplicate registration is a conflict
func (uh *UserHandler) HandleAddUser(c echo.Context) error {
	post := new(registerUserRequest)
	if err := c.Bind(post); err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, "Failed to bind user entity"))
	}

	if errs := uh.Validator.Struct(post); errs != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", errs))
	}

	created, err := uh.UserUseCase.Register(c.Request().Context(), post.Username)
	if err != nil {
		if errors.Is(err, user.ErrUnknownProfile) {
			return c.JSON(http.StatusBadRequest,
				NewRESTStandardError(http.StatusBadRequest, "Enter a valid username"))
		}
		if errors.Is(err, user.ErrDuplicatedUser) {
			return c.JSON(http.StatusConflict, NewRESTStandardError(http.StatusConflict, err.Error()))
		}
		return err
	}
	return c.JSON(http.StatusOK, created)
}

// HandleFetchUsers cumulative standings, equal totals share a position
func (uh *UserHandler) HandleFetchUsers(c echo.Context) error {
	standings, err := uh.UserUseCase.Standings(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, standings)
}
