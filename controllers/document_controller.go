package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/autoservice-manager/workshop-api/utils"
	"github.com/gin-gonic/gin"
)

// GetDocument handles GET /api/v1/documents/:filename - serves generated invoice PDFs
func GetDocument(c *gin.Context) {
	filename := c.Param("filename")

	if err := utils.ValidateDocumentFilename(filename); err != nil {
		code := "INVALID_REQUEST"
		var docErr *utils.DocumentError
		if errors.As(err, &docErr) {
			code = docErr.Code
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	filePath := filepath.Join(utils.DocumentsDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_NOT_FOUND",
				"message": "Document not found",
			},
		})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "inline; filename=\""+filename+"\"")
	c.Header("Cache-Control", "private, max-age=3600")
	c.File(filePath)
}
