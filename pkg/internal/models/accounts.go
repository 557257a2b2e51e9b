package models

const (
	AccountRoleAdmin = "admin"
	AccountRoleGuest = "guest"
)

type Account struct {
	BaseModel

	Name         string `json:"name" gorm:"uniqueIndex"`
	Nick         string `json:"nick"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`

	// Guests belong to exactly one event; admins have no event binding.
	EventID *uint `json:"event_id"`
}
