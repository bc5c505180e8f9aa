package models

import (
	"log"

	"github.com/fpadjusters/claims_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Tenant{}, &User{},
		&Case{}, &Contact{}, &Insurer{},
		&Fee{}, &Commission{},
		&Document{}, &DocumentVersion{}, &Template{},
		&Claim{}, &Settlement{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
