package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  string    `gorm:"index;size:36;not null" json:"tenant_id"`
	Email     string    `gorm:"size:100;not null;unique" json:"email" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"password,omitempty"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	Role      UserRole  `gorm:"size:20;default:USER" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	TenantId string `json:"tenant_id"`
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type UpdateProfileInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type LoginInfo struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

/*
caches:
	User:$id  (invalidated on update/role change/delete)
*/

func (u *User) cacheKey() string { return userCacheKey(u.ID) }

func userCacheKey(id int) string { return "User:" + utils.IntToString(id) }

// PrepareGive strips the password hash before a row leaves the API.
func (result *User) PrepareGive() {
	result.Password = ""
}

func RegisterUser(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB()

	if !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}
	if input.TenantId == "" {
		return nil, errors.New("tenant_id is required")
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	// Email is globally unique across tenants.
	var count int64
	scanCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	if err := db.WithContext(scanCtx).Model(&User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, wrapDB(err)
	}
	if count > 0 {
		return nil, utils.ErrorDuplicate
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := UserRoleUser
	if input.Role != "" {
		if !IsAllowedUserRole(input.Role) {
			return nil, errors.New("invalid role")
		}
		role = UserRole(input.Role)
	}

	user := User{
		TenantId: input.TenantId,
		Email:    input.Email,
		Name:     html.EscapeString(strings.TrimSpace(input.Name)),
		Phone:    utils.FormatPhoneNumber(input.Phone, utils.CountryCode),
		Password: string(hashedPassword),
		IsActive: utils.NewTrue(),
		Role:     role,
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, wrapDB(err)
	}
	user.PrepareGive()
	return &user, nil
}

func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {
	db := config.GetDB()

	email = strings.ToLower(strings.TrimSpace(email))

	user := User{}
	// Login happens before any tenant scope exists.
	scanCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	if err := db.WithContext(scanCtx).Model(&User{}).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := utils.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errors.New("invalid email or password")
		}
		return nil, err
	}

	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, user.TenantId, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.PrepareGive()
	return &LoginInfo{Token: token, User: &user}, nil
}

// FindSessionUser re-fetches the token's claimed (user, tenant) pair. The token
// itself is never revoked, so this lookup is the only revocation mechanism:
// a deleted or disabled user, or a tenant reassignment after token issuance,
// fails here. The returned (and cached) row never carries the password hash.
func FindSessionUser(ctx context.Context, userId int, tenantId string) (*User, error) {
	var user User
	if exists, err := config.GetRedisObject(userCacheKey(userId), &user); err == nil && exists {
		if user.TenantId != tenantId || (user.IsActive != nil && !*user.IsActive) {
			return nil, utils.ErrorRecordNotFound
		}
		return &user, nil
	}

	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	scanCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	if err := db.WithContext(scanCtx).Model(&User{}).
		Where("id = ? AND tenant_id = ?", userId, tenantId).
		Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, utils.ErrorRecordNotFound
	}

	user.PrepareGive()
	_ = config.SetRedisObject(user.cacheKey(), &user, utils.GetCacheLifespan())
	return &user, nil
}

func GetProfile(ctx context.Context) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	result, err := getScoped[User](ctx, userId)
	if err != nil {
		return nil, err
	}
	result.PrepareGive()
	return result, nil
}

func UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	user, err := getScoped[User](ctx, userId)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(input.Name) != "" {
		updates["name"] = html.EscapeString(strings.TrimSpace(input.Name))
	}
	if input.Phone != "" {
		updates["phone"] = utils.FormatPhoneNumber(input.Phone, utils.CountryCode)
	}

	db := config.GetDB()
	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, wrapDB(err)
		}
		_ = config.RemoveRedisKey(user.cacheKey())
	}
	user.PrepareGive()
	return user, nil
}

func ListUsers(ctx context.Context) ([]*User, error) {
	results, err := listScoped[User](ctx, "", nil)
	if err != nil {
		return nil, err
	}
	for _, u := range results {
		u.PrepareGive()
	}
	return results, nil
}

func UpdateUserRole(ctx context.Context, userId int, role string) (*User, error) {
	if !IsAllowedUserRole(role) {
		return nil, errors.New("invalid role")
	}

	user, err := getScoped[User](ctx, userId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).Update("role", UserRole(role)).Error; err != nil {
		return nil, wrapDB(err)
	}
	_ = config.RemoveRedisKey(user.cacheKey())
	user.PrepareGive()
	return user, nil
}

func DeleteUser(ctx context.Context, userId int) (*User, error) {
	user, err := deleteScoped[User](ctx, userId)
	if err != nil {
		return nil, err
	}
	_ = config.RemoveRedisKey(user.cacheKey())
	user.PrepareGive()
	return user, nil
}

func ChangePassword(ctx context.Context, oldPassword string, newPassword string) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	user, err := getScoped[User](ctx, userId)
	if err != nil {
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return nil, errors.New("old password is wrong")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).UpdateColumn("password", string(hashedPassword)).Error; err != nil {
		return nil, wrapDB(err)
	}
	_ = config.RemoveRedisKey(user.cacheKey())
	user.PrepareGive()
	return user, nil
}
