package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/response"
	"github.com/jordymora1978/dropux-admin/internal/role"
	"github.com/jordymora1978/dropux-admin/internal/utils"
)

func CreateUserHandler(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name" validate:"required,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		RoleName string `json:"role_name" validate:"required"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if errs := utils.Validate(body); errs != nil {
		return response.ValidationError(c, errs)
	}

	u, err := CreateUser(database.DB, actor(c), body.Name, body.Email, body.Password, body.RoleName)
	if err != nil {
		return fail(c, err, "Failed to create user")
	}

	return response.Created(c, u, "User created successfully")
}

func ListUsersHandler(c *fiber.Ctx) error {
	users, err := ListUsers(database.DB)
	if err != nil {
		return response.InternalError(c, "Failed to fetch users")
	}

	return response.Success(c, users, "Users retrieved successfully")
}

func GetUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	u, err := GetUser(database.DB, uint(id))
	if err != nil {
		return fail(c, err, "Failed to fetch user")
	}

	return response.Success(c, u, "User retrieved successfully")
}

func UpdateStatusHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var body struct {
		Active *bool `json:"active" validate:"required"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if errs := utils.Validate(body); errs != nil {
		return response.ValidationError(c, errs)
	}

	u, err := SetActive(database.DB, actor(c), uint(id), *body.Active)
	if err != nil {
		return fail(c, err, "Failed to update user status")
	}

	return response.Success(c, u, "User status updated successfully")
}

func UpdateRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var body struct {
		RoleName string `json:"role_name" validate:"required"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if errs := utils.Validate(body); errs != nil {
		return response.ValidationError(c, errs)
	}

	u, err := SetRole(database.DB, actor(c), uint(id), body.RoleName)
	if err != nil {
		return fail(c, err, "Failed to update user role")
	}

	return response.Success(c, u, "User role updated successfully")
}

func DeleteUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	if err := DeleteUser(database.DB, actor(c), uint(id)); err != nil {
		return fail(c, err, "Failed to delete user")
	}

	return response.NoContent(c)
}

func actor(c *fiber.Ctx) Actor {
	id, _ := c.Locals("user_id").(uint)
	r, _ := c.Locals("role").(string)
	return Actor{ID: id, Role: r}
}

func fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return response.NotFound(c, "User")
	case errors.Is(err, role.ErrUnknownRole):
		return response.NotFound(c, "Role")
	case errors.Is(err, ErrEmailTaken):
		return response.Conflict(c, "User with this email already exists")
	case errors.Is(err, ErrSelfChange):
		return response.BadRequest(c, "Cannot change your own account", nil)
	case errors.Is(err, ErrPrivilegedOp):
		return response.Forbidden(c, "Only a super admin may manage super admins")
	default:
		return response.InternalError(c, fallback)
	}
}
