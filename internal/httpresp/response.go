package httpresp

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page is the envelope of every paginated listing.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Paging reads ?page and ?limit. Out of range limits fall back to def.
func Paging(c *gin.Context, def, max int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if limit <= 0 || limit > max {
		limit = def
	}

	return page, limit, (page - 1) * limit
}

func Paged[T any](c *gin.Context, data []T, page, limit int, total int64) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, Page[T]{
		Data:  data,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}
