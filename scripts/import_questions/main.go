package main

import (
	"flag"
	"log"
	"os"

	"github.com/mroshb/quizbot/internal/questions"
)

// Converts a question workbook into the text bank format.
func main() {
	out := flag.String("out", "soal.txt", "text bank to write")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: import_questions [-out soal.txt] <questions.xlsx>")
	}

	bank, err := questions.LoadExcel(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	if err := os.WriteFile(*out, []byte(questions.FormatText(bank)), 0o644); err != nil {
		log.Fatal("failed to write bank:", err)
	}
	log.Printf("Imported %d questions into %s", bank.Len(), *out)
}
