package models

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

// Document is the live head of a versioned file: engineer reports, policy
// scans, loss photos. Version starts at 1 and increments on every update;
// the displaced state lands in an append-only DocumentVersion row.
type Document struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  string    `gorm:"index;size:36;not null" json:"tenant_id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Type      string    `gorm:"size:50" json:"type"`
	MimeType  string    `gorm:"size:100" json:"mime_type"`
	Size      int64     `json:"size"`
	Url       string    `gorm:"size:500" json:"url"`
	OcrText   string    `gorm:"type:longtext" json:"ocr_text"`
	Metadata  string    `gorm:"type:text" json:"metadata"`
	Version   int       `gorm:"default:1" json:"version"`
	CaseId    *int      `gorm:"index" json:"case_id"`
	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DocumentVersion is an immutable snapshot of a document head taken at update
// time. Rows are only ever inserted; after N updates the versions table holds
// exactly N rows numbered 1..N for that document.
type DocumentVersion struct {
	ID         int       `gorm:"primary_key" json:"id"`
	TenantId   string    `gorm:"index;size:36;not null" json:"tenant_id"`
	DocumentId int       `gorm:"index:idx_doc_version,unique;not null" json:"document_id"`
	Version    int       `gorm:"index:idx_doc_version,unique;not null" json:"version"`
	Name       string    `gorm:"size:150" json:"name"`
	MimeType   string    `gorm:"size:100" json:"mime_type"`
	Size       int64     `json:"size"`
	Url        string    `gorm:"size:500" json:"url"`
	OcrText    string    `gorm:"type:longtext" json:"ocr_text"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	CreatedBy  int       `json:"created_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewDocument struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	CaseId   *int              `json:"case_id"`
	Metadata map[string]string `json:"metadata"`
}

type UpdateDocumentInput struct {
	Name     *string           `json:"name"`
	Type     *string           `json:"type"`
	CaseId   *int              `json:"case_id"`
	Metadata map[string]string `json:"metadata"`
}

func documentObjectKey(tenantId, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%s/documents/%s-%s", tenantId, uuid.NewString(), base)
}

// runOcr extracts text synchronously (stub) and hands the blob off to the
// async extraction pipeline. Pub/Sub failures are logged and swallowed; the
// upload already succeeded.
func runOcr(ctx context.Context, log *logrus.Logger, tenantId string, docId, version int, objectKey, mimeType string, data []byte) string {
	text, err := utils.ExtractText(mimeType, data)
	if err != nil {
		log.WithFields(logrus.Fields{"document_id": docId, "mime_type": mimeType}).
			Warnf("text extraction failed: %v", err)
	}

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	if perr := config.PublishOcrRequest(ctx, config.OcrRequest{
		TenantId:      tenantId,
		DocumentId:    docId,
		Version:       version,
		ObjectKey:     objectKey,
		MimeType:      mimeType,
		CorrelationId: correlationId,
	}); perr != nil {
		log.WithFields(logrus.Fields{"document_id": docId}).
			Warnf("ocr request publish failed: %v", perr)
	}
	return text
}

// CreateDocument stores the blob under a fresh object key and inserts the
// head row at version 1. No DocumentVersion row exists until the first update.
func CreateDocument(ctx context.Context, input *NewDocument, data []byte, mimeType string) (*Document, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("document name is required")
	}
	if len(data) == 0 {
		return nil, errors.New("document content is required")
	}
	if input.CaseId != nil {
		if _, err := GetCase(ctx, *input.CaseId); err != nil {
			return nil, err
		}
	}

	metadataJSON := ""
	if len(input.Metadata) > 0 {
		var err error
		metadataJSON, err = utils.MarshalToJSON(input.Metadata)
		if err != nil {
			return nil, err
		}
	}

	objectKey := documentObjectKey(tenantId, input.Name)
	if err := utils.UploadBytesToGCS(ctx, objectKey, data, mimeType); err != nil {
		return nil, err
	}

	log := config.GetLogger()
	userId, _ := utils.GetUserIdFromContext(ctx)
	result := Document{
		TenantId:  tenantId,
		Name:      strings.TrimSpace(input.Name),
		Type:      input.Type,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		Url:       utils.BuildObjectAccessURL(objectKey),
		Metadata:  metadataJSON,
		Version:   1,
		CaseId:    input.CaseId,
		CreatedBy: userId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, wrapDB(err)
	}

	if utils.IsOcrEligible(mimeType) {
		result.OcrText = runOcr(ctx, log, tenantId, result.ID, 1, objectKey, mimeType, data)
	}
	if result.OcrText != "" {
		if err := db.WithContext(ctx).Model(&result).Update("ocr_text", result.OcrText).Error; err != nil {
			log.Warnf("failed to persist extracted text for document %d: %v", result.ID, err)
		}
	}
	return &result, nil
}

// UpdateDocument replaces the head. The current head state is snapshotted
// into document_versions under its current version number, and the head row
// is rewritten at version+1 — both inside one transaction, so a reader never
// observes a bumped head without its snapshot (or the reverse).
//
// data may be nil for metadata-only updates; the blob and MIME type carry
// over, and eligibility for re-extraction is judged by the MIME type already
// on the row, not by anything about the new payload.
func UpdateDocument(ctx context.Context, id int, input *UpdateDocumentInput, data []byte, mimeType string) (*Document, error) {
	current, err := getScoped[Document](ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CaseId != nil {
		if _, err := GetCase(ctx, *input.CaseId); err != nil {
			return nil, err
		}
	}

	newUrl := current.Url
	newMime := current.MimeType
	newSize := current.Size
	objectKey := ""
	if len(data) > 0 {
		if mimeType == "" {
			mimeType = current.MimeType
		}
		name := current.Name
		if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
			name = strings.TrimSpace(*input.Name)
		}
		objectKey = documentObjectKey(current.TenantId, name)
		if err := utils.UploadBytesToGCS(ctx, objectKey, data, mimeType); err != nil {
			return nil, err
		}
		newUrl = utils.BuildObjectAccessURL(objectKey)
		newMime = mimeType
		newSize = int64(len(data))
	}

	log := config.GetLogger()
	userId, _ := utils.GetUserIdFromContext(ctx)

	updated := *current
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updated.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		updated.Type = *input.Type
	}
	if input.CaseId != nil {
		updated.CaseId = input.CaseId
	}
	if input.Metadata != nil {
		metadataJSON, merr := utils.MarshalToJSON(input.Metadata)
		if merr != nil {
			return nil, merr
		}
		updated.Metadata = metadataJSON
	}
	updated.Url = newUrl
	updated.MimeType = newMime
	updated.Size = newSize
	updated.Version = current.Version + 1

	if len(data) > 0 {
		// Eligibility is decided off the MIME type the row already carried, a
		// carry-over from the original sync flow. A PDF replaced by a text
		// file still goes through extraction; a text file replaced by a PDF
		// does not until the row's type catches up.
		updated.OcrText = ""
		if utils.IsOcrEligible(current.MimeType) {
			updated.OcrText = runOcr(ctx, log, current.TenantId, current.ID, updated.Version, objectKey, newMime, data)
		}
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot := DocumentVersion{
			TenantId:   current.TenantId,
			DocumentId: current.ID,
			Version:    current.Version,
			Name:       current.Name,
			MimeType:   current.MimeType,
			Size:       current.Size,
			Url:        current.Url,
			OcrText:    current.OcrText,
			Metadata:   current.Metadata,
			CreatedBy:  userId,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return wrapDB(err)
		}
		return tx.Model(&Document{}).Where("id = ?", current.ID).Updates(map[string]interface{}{
			"name":      updated.Name,
			"type":      updated.Type,
			"mime_type": updated.MimeType,
			"size":      updated.Size,
			"url":       updated.Url,
			"ocr_text":  updated.OcrText,
			"metadata":  updated.Metadata,
			"version":   updated.Version,
			"case_id":   updated.CaseId,
		}).Error
	})
	if err != nil {
		return nil, wrapDB(err)
	}
	return &updated, nil
}

func GetDocument(ctx context.Context, id int) (*Document, error) {
	return getScoped[Document](ctx, id)
}

// ListDocuments returns the tenant's document heads, optionally narrowed to
// one case.
func ListDocuments(ctx context.Context, caseId *int) ([]*Document, error) {
	if caseId != nil {
		return listScoped[Document](ctx, "case_id", *caseId)
	}
	return listScoped[Document](ctx, "", nil)
}

// SearchDocuments matches query as a case-insensitive substring over name,
// extracted text, and metadata, newest first. Results are capped; refine the
// query rather than paginate.
func SearchDocuments(ctx context.Context, query string) ([]*Document, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is required")
	}

	pattern := "%" + strings.ToLower(query) + "%"
	db := config.GetDB()
	var results []*Document
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		Where("LOWER(name) LIKE ? OR LOWER(ocr_text) LIKE ? OR LOWER(metadata) LIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(config.SearchLimit).
		Find(&results).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	return results, nil
}

// ListDocumentVersions returns the snapshots for a document, newest first.
// The live head is not included.
func ListDocumentVersions(ctx context.Context, documentId int) ([]*DocumentVersion, error) {
	if _, err := getScoped[Document](ctx, documentId); err != nil {
		return nil, err
	}

	tenantId, _ := utils.GetTenantIdFromContext(ctx)
	db := config.GetDB()
	var results []*DocumentVersion
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ?", tenantId, documentId).
		Order("version DESC").
		Find(&results).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	return results, nil
}

// GetDocumentVersion fetches one snapshot by document id and version number.
func GetDocumentVersion(ctx context.Context, documentId, version int) (*DocumentVersion, error) {
	if _, err := getScoped[Document](ctx, documentId); err != nil {
		return nil, err
	}

	tenantId, _ := utils.GetTenantIdFromContext(ctx)
	db := config.GetDB()
	var result DocumentVersion
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ? AND version = ?", tenantId, documentId, version).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, wrapDB(err)
	}
	return &result, nil
}

// DeleteDocument removes the head and all its snapshots. Blobs stay in object
// storage; keys are uuid-fresh so nothing dangles onto them.
func DeleteDocument(ctx context.Context, id int) (*Document, error) {
	current, err := getScoped[Document](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND document_id = ?", current.TenantId, id).
			Delete(&DocumentVersion{}).Error; err != nil {
			return wrapDB(err)
		}
		return tx.Delete(current).Error
	})
	if err != nil {
		return nil, wrapDB(err)
	}
	return current, nil
}
