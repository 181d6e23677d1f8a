package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/store"
	"github.com/trackline-dev/trackline/internal/types"
	"github.com/trackline-dev/trackline/internal/utils"
)

func UploadActivityFile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activityID, err := utils.GetActivityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	header, err := ctx.FormFile("file")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	src, err := header.Open()

	if err != nil {
		log.Printf("Failed to open upload: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}
	defer src.Close()

	relPath, size, err := uploads.Save(header.Filename, src)

	if err != nil {
		log.Printf("Failed to store upload: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	file, err := store.CreateActivityFile(db.DB, activityID, principalOf(currentUser), store.FileInfo{
		Filename:   header.Filename,
		FilePath:   relPath,
		FileSize:   size,
		FileType:   header.Header.Get("Content-Type"),
		UploadedBy: currentUser.Username,
	})

	if err != nil {
		// The record failed; don't leave the bytes behind.
		if removeErr := uploads.Remove(relPath); removeErr != nil {
			log.Printf("Failed to remove orphaned upload %s: %v", relPath, removeErr)
		}

		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		log.Printf("Failed to record upload: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	ctx.JSON(http.StatusCreated, fileResponse(*file))
}

func ListActivityFiles(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activityID, err := utils.GetActivityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := store.ListActivityFiles(db.DB, activityID, principalOf(currentUser))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		log.Printf("Failed to list files: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve files"})
		return
	}

	response := make([]types.FileResponse, 0, len(files))
	for _, file := range files {
		response = append(response, fileResponse(file))
	}

	ctx.JSON(http.StatusOK, response)
}

func DownloadActivityFile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activityID, err := utils.GetActivityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileID, err := utils.GetFileID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := store.GetActivityFile(db.DB, fileID, activityID, principalOf(currentUser))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		log.Printf("Failed to load file %d: %v", fileID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve file"})
		return
	}

	if !uploads.Exists(file.FilePath) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "File missing on server"})
		return
	}

	ctx.FileAttachment(uploads.Path(file.FilePath), file.Filename)
}

func DeleteActivityFile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	activityID, err := utils.GetActivityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileID, err := utils.GetFileID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := store.DeleteActivityFile(db.DB, fileID, activityID, principalOf(currentUser))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		log.Printf("Failed to delete file %d: %v", fileID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	if err := uploads.Remove(file.FilePath); err != nil {
		log.Printf("Failed to remove stored file %s: %v", file.FilePath, err)
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
