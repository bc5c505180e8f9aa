package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

const importLockTTL = 2 * time.Minute

// ImportedClaimRow is one parsed spreadsheet row before it touches the
// database.
type ImportedClaimRow struct {
	Name        string
	Status      string
	ClaimNumber string
	Insured     string
	Amount      decimal.Decimal
}

// ClaimImportResult reports what an import run did. Skipped rows carry a
// per-row reason so the operator can fix the sheet and re-run.
type ClaimImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

var claimImportColumns = map[string]string{
	"claim name":   "name",
	"name":         "name",
	"status":       "status",
	"claim number": "claim_number",
	"insured":      "insured",
	"amount":       "amount",
}

// ParseClaimSheet turns raw sheet rows into claim rows. The first row is the
// header; column order is free as long as the headings match. Rows that
// cannot be parsed are reported by 1-based sheet row number and skipped, not
// fatal.
func ParseClaimSheet(rows [][]string) ([]*ImportedClaimRow, []string, error) {
	if len(rows) == 0 {
		return nil, nil, errors.New("sheet is empty")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		if field, ok := claimImportColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := colIdx[field]; !dup {
				colIdx[field] = i
			}
		}
	}
	if _, ok := colIdx["name"]; !ok {
		return nil, nil, errors.New("missing required column: Claim Name")
	}

	cell := func(row []string, field string) string {
		idx, ok := colIdx[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var parsed []*ImportedClaimRow
	var skipped []string
	for i, row := range rows[1:] {
		rowNo := i + 2
		name := cell(row, "name")
		if name == "" {
			skipped = append(skipped, fmt.Sprintf("row %d: missing claim name", rowNo))
			continue
		}

		amount := decimal.Zero
		if raw := cell(row, "amount"); raw != "" {
			var err error
			amount, err = utils.ParseDecimal(raw)
			if err != nil {
				skipped = append(skipped, fmt.Sprintf("row %d: could not parse amount %q", rowNo, raw))
				continue
			}
		}

		parsed = append(parsed, &ImportedClaimRow{
			Name:        name,
			Status:      strings.ToUpper(cell(row, "status")),
			ClaimNumber: cell(row, "claim_number"),
			Insured:     cell(row, "insured"),
			Amount:      amount,
		})
	}
	return parsed, skipped, nil
}

// ImportClaimsFromXlsx reads an .xlsx upload and upserts the tenant's claims.
// Rows match existing claims by claim number when present, by name otherwise.
// A per-tenant lock serializes concurrent imports; a second import while one
// is running fails fast instead of interleaving.
func ImportClaimsFromXlsx(ctx context.Context, filename string, file io.Reader) (*ClaimImportResult, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, errors.New("tenant id is required")
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return nil, errors.New("invalid file type: only .xlsx files are allowed")
	}

	locker := config.GetRedisLock()
	if locker != nil {
		lock, err := locker.Obtain(ctx, "import:"+tenantId, importLockTTL, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, errors.New("another import is already running for this tenant")
			}
			return nil, err
		}
		defer lock.Release(ctx)
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		sheet = "Sheet1"
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet: %v", err)
	}

	parsed, skipped, err := ParseClaimSheet(rows)
	if err != nil {
		return nil, err
	}

	result := &ClaimImportResult{Skipped: len(skipped), Errors: skipped}
	db := config.GetDB()
	log := config.GetLogger()
	for _, row := range parsed {
		var existing Claim
		q := db.WithContext(ctx).Where("tenant_id = ?", tenantId)
		if row.ClaimNumber != "" {
			q = q.Where("claim_number = ?", row.ClaimNumber)
		} else {
			q = q.Where("name = ?", row.Name)
		}
		err := q.First(&existing).Error

		switch {
		case err == nil:
			updates := map[string]interface{}{
				"name":    row.Name,
				"insured": row.Insured,
				"amount":  row.Amount,
			}
			if row.Status != "" {
				updates["status"] = row.Status
			}
			if uerr := db.WithContext(ctx).Model(&existing).Updates(updates).Error; uerr != nil {
				return nil, wrapDB(uerr)
			}
			result.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			status := row.Status
			if status == "" {
				status = CaseStatusOpen
			}
			record := Claim{
				TenantId:    tenantId,
				Name:        row.Name,
				ClaimNumber: row.ClaimNumber,
				Insured:     row.Insured,
				Amount:      row.Amount,
				Status:      status,
			}
			if cerr := db.WithContext(ctx).Create(&record).Error; cerr != nil {
				return nil, wrapDB(cerr)
			}
			result.Created++
		default:
			return nil, wrapDB(err)
		}
	}

	log.WithFields(logrus.Fields{
		"tenant_id": tenantId,
		"created":   result.Created,
		"updated":   result.Updated,
		"skipped":   result.Skipped,
	}).Info("claims import finished")
	return result, nil
}

// ExportClaimsToXlsx builds an .xlsx workbook of the tenant's claims, newest
// first, for the caller to stream out.
func ExportClaimsToXlsx(ctx context.Context) (*excelize.File, error) {
	claims, err := ListClaims(ctx, "")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", "Claim Name")
	f.SetCellValue(sheet, "B1", "Status")
	f.SetCellValue(sheet, "C1", "Claim Number")
	f.SetCellValue(sheet, "D1", "Insured")
	f.SetCellValue(sheet, "E1", "Amount")

	for i, c := range claims {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+rowNo, c.Name)
		f.SetCellValue(sheet, "B"+rowNo, c.Status)
		f.SetCellValue(sheet, "C"+rowNo, c.ClaimNumber)
		f.SetCellValue(sheet, "D"+rowNo, c.Insured)
		f.SetCellValue(sheet, "E"+rowNo, c.Amount.StringFixed(2))
	}
	return f, nil
}
