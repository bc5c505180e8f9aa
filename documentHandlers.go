package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/models"
	"github.com/fpadjusters/claims_backend/utils"
)

const maxUploadSizeBytes int64 = 10 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// readUploadedFile pulls the "file" part out of a multipart request, enforcing
// the size cap before the whole body is read.
func readUploadedFile(c *gin.Context) ([]byte, string, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return nil, "", "", false
	}
	if fileHeader.Size > maxUploadSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
		return nil, "", "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return nil, "", "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSizeBytes+1))
	if err != nil || int64(len(data)) > maxUploadSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
		return nil, "", "", false
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, fileHeader.Filename, true
}

func parseMetadataForm(c *gin.Context) (map[string]string, bool) {
	raw := strings.TrimSpace(c.PostForm("metadata"))
	if raw == "" {
		return nil, true
	}
	var metadata map[string]string
	if err := utils.UnmarshalFromJSON([]byte(raw), &metadata); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "metadata must be a JSON object of strings"})
		return nil, false
	}
	return metadata, true
}

func createDocumentHandler(c *gin.Context) {
	data, mimeType, filename, ok := readUploadedFile(c)
	if !ok {
		return
	}
	metadata, ok := parseMetadataForm(c)
	if !ok {
		return
	}

	input := models.NewDocument{
		Name:     strings.TrimSpace(c.PostForm("name")),
		Type:     c.PostForm("type"),
		Metadata: metadata,
	}
	if input.Name == "" {
		input.Name = filename
	}
	if raw := c.PostForm("case_id"); raw != "" {
		caseId, err := strconv.Atoi(raw)
		if err != nil || caseId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case_id"})
			return
		}
		input.CaseId = &caseId
	}

	result, err := models.CreateDocument(c.Request.Context(), &input, data, mimeType)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"document": result}
	if imageMimeTypes[mimeType] {
		if thumbURL := createThumbnail(c.Request.Context(), result, data); thumbURL != "" {
			resp["thumbnail_url"] = thumbURL
		}
	}
	c.JSON(http.StatusCreated, resp)
}

func updateDocumentHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input models.UpdateDocumentInput
	var data []byte
	var mimeType string

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var ok bool
		data, mimeType, _, ok = readUploadedFile(c)
		if !ok {
			return
		}
		metadata, ok := parseMetadataForm(c)
		if !ok {
			return
		}
		input.Metadata = metadata
		if v := strings.TrimSpace(c.PostForm("name")); v != "" {
			input.Name = &v
		}
		if v := c.PostForm("type"); v != "" {
			input.Type = &v
		}
		if raw := c.PostForm("case_id"); raw != "" {
			caseId, err := strconv.Atoi(raw)
			if err != nil || caseId <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case_id"})
				return
			}
			input.CaseId = &caseId
		}
	} else if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	result, err := models.UpdateDocument(c.Request.Context(), id, &input, data, mimeType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func getDocumentHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := models.GetDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func listDocumentsHandler(c *gin.Context) {
	caseId, ok := intQuery(c, "case_id")
	if !ok {
		return
	}
	results, err := models.ListDocuments(c.Request.Context(), caseId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func searchDocumentsHandler(c *gin.Context) {
	results, err := models.SearchDocuments(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func listDocumentVersionsHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	results, err := models.ListDocumentVersions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func getDocumentVersionHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version"})
		return
	}
	result, err := models.GetDocumentVersion(c.Request.Context(), id, version)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func downloadDocumentHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	doc, err := models.GetDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	objectKey := utils.ExtractObjectKeyFromURL(doc.Url)
	if objectKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	data, err := utils.DownloadBytesFromGCS(c.Request.Context(), objectKey, maxUploadSizeBytes)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service failed"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+path.Base(doc.Name)+"\"")
	c.Data(http.StatusOK, doc.MimeType, data)
}

func deleteDocumentHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := models.DeleteDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// createThumbnail renders a 200px JPEG next to the original image. Best
// effort; a decode or upload failure never fails the document create.
func createThumbnail(ctx context.Context, doc *models.Document, data []byte) string {
	logger := config.GetLogger()

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		logger.WithFields(logrus.Fields{"document_id": doc.ID}).
			Warn("thumbnail decode failed: " + err.Error())
		return ""
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		logger.WithFields(logrus.Fields{"document_id": doc.ID}).
			Warn("thumbnail encode failed: " + err.Error())
		return ""
	}

	objectKey := utils.ExtractObjectKeyFromURL(doc.Url)
	if objectKey == "" {
		return ""
	}
	thumbnailKey := path.Join(path.Dir(objectKey), "thumbnails", path.Base(objectKey)+".jpg")
	if err := utils.UploadBytesToGCS(ctx, thumbnailKey, buf.Bytes(), "image/jpeg"); err != nil {
		logger.WithFields(logrus.Fields{"document_id": doc.ID}).
			Warn("thumbnail upload failed: " + err.Error())
		return ""
	}
	return utils.BuildObjectAccessURL(thumbnailKey)
}
