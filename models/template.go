package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

// Template is reusable letter/report boilerplate (demand letters, proof of
// loss, status updates). Variables holds the placeholder names the content
// references, serialized as JSON; substitution happens client-side.
type Template struct {
	ID          int       `gorm:"primary_key" json:"id"`
	TenantId    string    `gorm:"index;size:36;not null" json:"tenant_id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Content     string    `gorm:"type:longtext" json:"content"`
	Category    string    `gorm:"size:50;index" json:"category"`
	Variables   string    `gorm:"type:text" json:"variables"`
	CreatedBy   int       `json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTemplate struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Content     string   `json:"content" binding:"required"`
	Category    string   `json:"category"`
	Variables   []string `json:"variables"`
}

type UpdateTemplateInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Content     *string  `json:"content"`
	Category    *string  `json:"category"`
	Variables   []string `json:"variables"`
}

func CreateTemplate(ctx context.Context, input *NewTemplate) (*Template, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("template name is required")
	}
	if input.Content == "" {
		return nil, errors.New("template content is required")
	}

	variablesJSON := ""
	if len(input.Variables) > 0 {
		var err error
		variablesJSON, err = utils.MarshalToJSON(input.Variables)
		if err != nil {
			return nil, err
		}
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	result := Template{
		TenantId:    tenantId,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Content:     input.Content,
		Category:    input.Category,
		Variables:   variablesJSON,
		CreatedBy:   userId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, wrapDB(err)
	}
	return &result, nil
}

func GetTemplate(ctx context.Context, id int) (*Template, error) {
	return getScoped[Template](ctx, id)
}

// ListTemplates returns the tenant's templates, optionally narrowed to one
// category.
func ListTemplates(ctx context.Context, category string) ([]*Template, error) {
	if category != "" {
		return listScoped[Template](ctx, "category", category)
	}
	return listScoped[Template](ctx, "", nil)
}

func UpdateTemplate(ctx context.Context, id int, input *UpdateTemplateInput) (*Template, error) {
	result, err := getScoped[Template](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Variables != nil {
		variablesJSON, merr := utils.MarshalToJSON(input.Variables)
		if merr != nil {
			return nil, merr
		}
		updates["variables"] = variablesJSON
	}
	if len(updates) == 0 {
		return result, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(result).Updates(updates).Error; err != nil {
		return nil, wrapDB(err)
	}
	return result, nil
}

func DeleteTemplate(ctx context.Context, id int) (*Template, error) {
	return deleteScoped[Template](ctx, id)
}
