package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/bulkimport"
	"github.com/xuri/excelize/v2"
)

// BulkUpload handles POST /tasks/bulk-upload: a multipart form with a
// spreadsheet in the "file" field. Only .xlsx/.xls extensions are accepted
// and the transient upload is removed on every exit path.
func (h *TaskHandler) BulkUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		failure(c, http.StatusBadRequest, "spreadsheet file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		failure(c, http.StatusBadRequest, "only .xlsx and .xls files are accepted")
		return
	}
	if fileHeader.Size > h.limits.MaxBytes {
		failure(c, http.StatusBadRequest,
			fmt.Sprintf("file exceeds the %d MB limit", h.limits.MaxBytes/(1<<20)))
		return
	}

	tmpPath := filepath.Join(h.limits.TmpDir, uuid.NewString()+ext)
	if err = c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to save uploaded file", "error", err)
		failure(c, http.StatusInternalServerError, "internal server error")
		return
	}
	defer func() {
		if errRemove := os.Remove(tmpPath); errRemove != nil {
			h.log.WarnContext(c.Request.Context(), "failed to remove uploaded file",
				"path", tmpPath, "error", errRemove)
		}
	}()

	workbook, err := excelize.OpenFile(tmpPath)
	if err != nil {
		failure(c, http.StatusBadRequest, "file is empty or invalid format")
		return
	}
	defer workbook.Close()

	rows, err := workbook.GetRows(workbook.GetSheetName(0))
	if err != nil {
		failure(c, http.StatusBadRequest, "file is empty or invalid format")
		return
	}

	report, err := h.importer.Run(c.Request.Context(), rows, actorFrom(c), fileHeader.Filename)
	if err != nil {
		if errors.Is(err, bulkimport.ErrEmptyFile) {
			failure(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.ErrorContext(c.Request.Context(), "bulk import failed", "error", err)
		failure(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"successCount":  report.SuccessCount,
		"errorCount":    report.ErrorCount,
		"errors":        report.Errors,
		"hasMoreErrors": report.HasMoreErrors,
	})
}

// DownloadTemplate handles GET /tasks/bulk-upload/template, returning an
// empty styled workbook whose headers match the import alias table.
func (h *TaskHandler) DownloadTemplate(c *gin.Context) {
	buffer, err := bulkimport.BuildTemplate()
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to build upload template", "error", err)
		failure(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="task-import-template.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buffer.Bytes())
}
