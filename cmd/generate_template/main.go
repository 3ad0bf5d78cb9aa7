package main

import (
	"fmt"
	"os"
	"path/filepath"

	"wellwatch/internal/models"
	"wellwatch/internal/service"
)

// Writes the import template spreadsheets for both record kinds, for
// shipping with docs or seeding manual tests.
func main() {
	outDir := "./storage/templates"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	excelService := service.NewExcelService()
	for _, kind := range []models.RecordKind{models.KindProperty, models.KindWell} {
		path := filepath.Join(outDir, fmt.Sprintf("%s_import_template.xlsx", kind))
		if err := excelService.GenerateImportTemplate(kind, path); err != nil {
			fmt.Printf("Error generating %s template: %v\n", kind, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	}
}
