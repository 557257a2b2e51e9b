package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func GetAccount(id uint) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrAccountNotFound
		}
		return account, fmt.Errorf("unable to get account by id: %v", err)
	}
	return account, nil
}

func GetAccountWithName(name string) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("name = ?", name).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrAccountNotFound
		}
		return account, fmt.Errorf("unable to get account by name: %v", err)
	}
	return account, nil
}

func AuthenticateAccount(name, password string) (models.Account, error) {
	account, err := GetAccountWithName(name)
	if err != nil {
		return account, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return account, ErrInvalidCredentials
	}

	return account, nil
}

func HashPassword(password string) (string, error) {
	data, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(data), err
}

// NewGuestAccount registers a throwaway identity bound to one event. The
// display name comes from the guest; the unique login name is generated.
func NewGuestAccount(event models.Event, nick string) (models.Account, error) {
	account := models.Account{
		Name:    fmt.Sprintf("guest-%s", strings.Split(uuid.NewString(), "-")[0]),
		Nick:    nick,
		Role:    models.AccountRoleGuest,
		EventID: &event.ID,
	}

	if err := database.C.Create(&account).Error; err != nil {
		return account, err
	}
	return account, nil
}

// EnsureBootstrapAdmin seeds the first admin account so a fresh deployment
// can be signed into. Credentials come from settings; no-op once any admin
// exists.
func EnsureBootstrapAdmin() error {
	var count int64
	if err := database.C.Model(&models.Account{}).
		Where("role = ?", models.AccountRoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := viper.GetString("security.bootstrap_admin_password")
	if len(password) == 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return database.C.Create(&models.Account{
		Name:         "admin",
		Nick:         "Administrator",
		PasswordHash: hash,
		Role:         models.AccountRoleAdmin,
	}).Error
}

func MintToken(account models.Account) (string, error) {
	lifetime := viper.GetDuration("security.token_lifetime")
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}

	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", account.ID),
		"name": account.Name,
		"role": account.Role,
		"exp":  time.Now().Add(lifetime).Unix(),
		"iat":  time.Now().Unix(),
	}

	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(viper.GetString("security.jwt_secret")))
}

// ParseToken resolves a bearer token into the live account record, so role or
// event changes take effect without waiting for token expiry.
func ParseToken(token string) (models.Account, error) {
	var account models.Account

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(viper.GetString("security.jwt_secret")), nil
	})
	if err != nil || !parsed.Valid {
		return account, ErrInvalidCredentials
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return account, ErrInvalidCredentials
	}

	var id uint
	if _, err := fmt.Sscanf(sub, "%d", &id); err != nil {
		return account, ErrInvalidCredentials
	}

	return GetAccount(id)
}
