package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
)

// writeAudit queues an event for the authenticated actor's shop.
func writeAudit(
	c *gin.Context,
	d *audit.Dispatcher,
	action string,
	entity string,
	entityID *uuid.UUID,
	meta any,
) {
	userID := middleware.UserID(c)

	d.Dispatch(audit.Event{
		ShopID:   middleware.ShopID(c),
		UserID:   &userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Metadata: meta,
	})
}

func actorOf(c *gin.Context) *uuid.UUID {
	id := middleware.UserID(c)
	return &id
}
