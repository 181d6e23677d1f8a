package handlers

import (
	"bytes"
	"encoding/csv"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/store"
	"github.com/trackline-dev/trackline/internal/utils"
)

var exportColumns = []string{"ID", "Title", "Description", "Status", "Assigned-to", "Injected-by", "Created", "Updated"}

// ExportActivitiesCSV downloads the caller's full scope as CSV, optionally
// filtered by status.
func ExportActivitiesCSV(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activities, err := store.ActivitiesForExport(db.DB, principalOf(currentUser), ctx.Query("status"))

	if err != nil {
		log.Printf("Failed to export activities: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export activities"})
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportColumns); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export activities"})
		return
	}

	for _, activity := range activities {
		row := []string{
			strconv.FormatUint(uint64(activity.ID), 10),
			activity.Title,
			strOrEmpty(activity.Description),
			activity.Status,
			strOrEmpty(activity.AssignedTo),
			strOrEmpty(activity.InjectedBy),
			activity.CreatedAt.UTC().Format(time.RFC3339),
			activity.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export activities"})
			return
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export activities"})
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename=activities.csv")
	ctx.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
