package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	localCache "github.com/wonderfly/host-hub/pkg/internal/cache"
	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"gorm.io/gorm"
)

const accessCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func newAccessCode() string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		sb.WriteByte(accessCodeCharset[rand.Intn(len(accessCodeCharset))])
	}
	return sb.String()
}

func NewEvent(event models.Event) (models.Event, error) {
	if len(event.Status) == 0 {
		event.Status = models.EventStatusPlanning
	}

	// Regenerate on the rare code collision instead of surfacing it.
	for attempt := 0; attempt < 5; attempt++ {
		event.AccessCode = newAccessCode()
		err := database.C.Create(&event).Error
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return event, err
		}
	}

	return event, fmt.Errorf("unable to allocate an access code")
}

func GetEvent(id uint) (models.Event, error) {
	var event models.Event
	if err := database.C.Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return event, ErrEventNotFound
		}
		return event, fmt.Errorf("unable to get event: %v", err)
	}
	return event, nil
}

func eventCodeCacheKey(code string) string {
	return fmt.Sprintf("event-access-code#%s", strings.ToUpper(code))
}

// GetEventWithAccessCode sits on every guest join and socket subscribe, so
// resolved codes are kept in the local cache for a while.
func GetEventWithAccessCode(code string) (models.Event, error) {
	ctx := context.Background()
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)

	if hit, err := marshal.Get(ctx, eventCodeCacheKey(code), new(models.Event)); err == nil {
		return *hit.(*models.Event), nil
	}

	var event models.Event
	if err := database.C.Where("access_code = ?", strings.ToUpper(code)).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return event, ErrEventNotFound
		}
		return event, fmt.Errorf("unable to get event by access code: %v", err)
	}

	_ = marshal.Set(ctx, eventCodeCacheKey(code), event, store.WithExpiration(10*time.Minute))

	return event, nil
}

func EditEvent(event models.Event) (models.Event, error) {
	err := database.C.Save(&event).Error
	return event, err
}

// ListEventGuests resolves the fan-out targets for event-wide notifications.
func ListEventGuests(eventId uint) ([]models.Account, error) {
	var guests []models.Account
	if err := database.C.Where("event_id = ?", eventId).Find(&guests).Error; err != nil {
		return guests, fmt.Errorf("unable to list event guests: %v", err)
	}
	return guests, nil
}

// JoinEvent admits a guest by access code and returns their new account.
func JoinEvent(code, nick string) (models.Account, models.Event, error) {
	event, err := GetEventWithAccessCode(code)
	if err != nil {
		return models.Account{}, event, err
	}

	account, err := NewGuestAccount(event, nick)
	return account, event, err
}
