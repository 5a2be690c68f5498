package user

import (
	"errors"

	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/permission"
	"github.com/jordymora1978/dropux-admin/internal/role"
	"github.com/jordymora1978/dropux-admin/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrSelfChange   = errors.New("cannot change your own account")
	ErrPrivilegedOp = errors.New("only a super admin may manage super admins")
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

// Actor is the authenticated user performing an admin operation.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) privileged() bool {
	r, _ := permission.ParseRole(a.Role)
	return r.Privileged()
}

func CreateUser(db *gorm.DB, actor Actor, name, email, password, roleName string) (*models.User, error) {
	r, err := role.FindRole(db, roleName)
	if err != nil {
		return nil, err
	}
	if isPrivilegedRole(r.Name) && !actor.privileged() {
		return nil, ErrPrivilegedOp
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := models.User{Name: name, Email: email, Password: hashed, Active: true, RoleID: r.ID}
	if err := db.Create(&u).Error; err != nil {
		return nil, err
	}
	return GetUser(db, u.ID)
}

func ListUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Preload("Role").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func GetUser(db *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	if err := db.Preload("Role").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SetActive enables or disables a user. Disabling revokes the user's
// refresh tokens.
func SetActive(db *gorm.DB, actor Actor, id uint, active bool) (*models.User, error) {
	u, err := target(db, actor, id)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(u).Update("active", active).Error; err != nil {
			return err
		}
		if !active {
			return utils.RevokeRefreshTokens(tx, u.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetUser(db, id)
}

func SetRole(db *gorm.DB, actor Actor, id uint, roleName string) (*models.User, error) {
	r, err := role.FindRole(db, roleName)
	if err != nil {
		return nil, err
	}
	if isPrivilegedRole(r.Name) && !actor.privileged() {
		return nil, ErrPrivilegedOp
	}

	u, err := target(db, actor, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(u).Update("role_id", r.ID).Error; err != nil {
		return nil, err
	}
	return GetUser(db, id)
}

func DeleteUser(db *gorm.DB, actor Actor, id uint) error {
	u, err := target(db, actor, id)
	if err != nil {
		return err
	}
	return db.Delete(u).Error
}

// target loads the user an actor wants to modify and checks the actor may.
func target(db *gorm.DB, actor Actor, id uint) (*models.User, error) {
	if id == actor.ID {
		return nil, ErrSelfChange
	}
	u, err := GetUser(db, id)
	if err != nil {
		return nil, err
	}
	if u.Role != nil && isPrivilegedRole(u.Role.Name) && !actor.privileged() {
		return nil, ErrPrivilegedOp
	}
	return u, nil
}

func isPrivilegedRole(name string) bool {
	r, _ := permission.ParseRole(name)
	return r.Privileged()
}

// EnsureSuperAdmin creates the bootstrap super admin when none exists yet.
// It reports whether an account was created.
func EnsureSuperAdmin(db *gorm.DB, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	r, err := role.FindRole(db, string(permission.SuperAdmin))
	if err != nil {
		return false, err
	}

	var n int64
	if err := db.Model(&models.User{}).Where("role_id = ?", r.ID).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	bootstrap := Actor{Role: string(permission.SuperAdmin)}
	if _, err := CreateUser(db, bootstrap, "Super Admin", email, password, r.Name); err != nil {
		return false, err
	}
	return true, nil
}
