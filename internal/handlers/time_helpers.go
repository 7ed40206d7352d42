package handlers

import (
	"time"

	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
)

// --------------------------------------------------
// Timezone centralizado por barbearia
// --------------------------------------------------

func nowInShop(shop *models.Shop) time.Time {
	return timezone.NowIn(shop.Timezone)
}

// dayInShop is [00:00, next 00:00) of date in the shop zone.
func dayInShop(shop *models.Shop, date string) (time.Time, time.Time, error) {
	day, err := timezone.ParseDate(shop.Timezone, date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end := timezone.DayBounds(day)
	return start, end, nil
}

func parseDateTimeInShop(shop *models.Shop, date, clock string) (time.Time, error) {
	return timezone.ParseDateTime(shop.Timezone, date, clock)
}
