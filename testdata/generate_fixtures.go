//go:build ignore

// This program generates test fixture files for sheetkit.
package main

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

func main() {
	if err := generateXlsx(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating sample.xlsx: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Test fixtures generated successfully.")
}

// generateXlsx writes a survey-style sheet with one column per plot mode:
// categories, a few distinct numbers, a wide numeric spread, and blanks.
func generateXlsx() error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Responses"
	f.SetSheetName("Sheet1", sheet)

	header := []interface{}{"city", "rating", "minutes", "comment"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	cities := []string{"Oslo", "Lima", "Pune", "Kyiv", "Accra", "Quito"}
	for i := 0; i < 200; i++ {
		row := []interface{}{
			cities[(i*5)%len(cities)],
			1 + (i*7)%5,
			12.5 + float64((i*37)%480),
			"",
		}
		if i%9 == 0 {
			row[3] = "follow up"
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	// A second sheet so sheet selection by name has something to pick.
	if _, err := f.NewSheet("Notes"); err != nil {
		return err
	}
	f.SetCellValue("Notes", "A1", "source")
	f.SetCellValue("Notes", "A2", "generated")

	return f.SaveAs("testdata/sample.xlsx")
}
