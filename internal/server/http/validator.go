package http

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"chessrules/internal/server/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	validate = newValidator()

	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{1,40}$`)
)

// newValidator adds the account tags: username (letters, digits, underscore)
// and password (at least one letter and one digit)
func newValidator() *validator.Validate {
	v := validator.New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		return strings.ContainsFunc(pw, unicode.IsLetter) && strings.ContainsFunc(pw, unicode.IsDigit)
	}))
	return v
}

// describeValidation turns validator errors into one readable line
func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		unit := ""
		if fe.Type().Kind() == reflect.String {
			unit = " characters"
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s%s", field, fe.Param(), unit))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s%s", field, fe.Param(), unit))
		case "email":
			parts = append(parts, field+" must be a valid email address")
		case "username":
			parts = append(parts, field+" may only use letters, digits and underscore")
		case "password":
			parts = append(parts, field+" must contain a letter and a digit")
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// requestFor picks the body type of a POST route by its path suffix
func requestFor(path string) any {
	path = strings.TrimSuffix(path, "/")
	switch {
	case strings.HasSuffix(path, "/games"):
		return &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/join"):
		return &core.JoinRequest{}
	case strings.HasSuffix(path, "/moves"):
		return &core.MoveRequest{}
	case strings.HasSuffix(path, "/undo"):
		return &core.UndoRequest{}
	}
	return nil
}

// validationMiddleware parses and validates POST bodies, storing the result for handlers
func validationMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}

	requestType := requestFor(c.Path())
	if requestType == nil {
		return c.Next()
	}

	// an empty body stands for {}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(requestType); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrInvalidRequest,
				Details: err.Error(),
			})
		}
	}

	if err := validate.Struct(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: describeValidation(err),
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}