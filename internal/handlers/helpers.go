package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegate/internal/services"
)

// tolerant of types in context (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

// getActor reads the authenticated caller from context once per request; the
// services only ever see the explicit Actor value.
func getActor(c *gin.Context) services.Actor {
	var a services.Actor
	if id, ok := getIntFromCtx(c, "user_id"); ok {
		a.UserID = id
	}
	if id, ok := getIntFromCtx(c, "role_id"); ok {
		a.RoleID = id
	}
	return a
}

func pageParams(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "100"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 100
	}
	return size, (page - 1) * size
}
