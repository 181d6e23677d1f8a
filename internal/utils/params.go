package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

func paramUint(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	value, err := strconv.ParseUint(raw, 10, 64)

	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}

	return uint(value), nil
}

func GetActivityID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "activity_id")
}

func GetSubtaskID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "subtask_id")
}

func GetFileID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "file_id")
}

func GetWebhookID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "webhook_id")
}

func GetUserID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "user_id")
}
