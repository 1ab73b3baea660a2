package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/mroshb/quizbot/internal/questions"
	"github.com/xuri/excelize/v2"
)

func main() {
	rowsPerSheet := flag.Int("rows", 5, "rows to preview per sheet")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: inspect_bank [-rows n] <questions.xlsx|questions.txt>")
	}
	path := flag.Arg(0)

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		previewWorkbook(path, *rowsPerSheet)
	}

	bank, err := questions.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Usable questions: %d\n", bank.Len())
}

func previewWorkbook(path string, limit int) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		log.Fatal("no sheets found")
	}
	fmt.Printf("Sheets: %v\n", sheets)

	for _, sheetName := range sheets {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("== %s (%d rows)\n", sheetName, len(rows))
		for i, row := range rows {
			if i > limit {
				break
			}
			fmt.Printf("Row %d: %v\n", i, row)
		}
	}
}
