package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lettersprint/internal/config"
	"lettersprint/internal/repository"
)

// Seeds the word dictionary used for answer validation. Word lists are
// plain text, one word per line, named after the category they belong to:
//
//	go run ./cmd/seed -category animals -file words/animals.txt
func main() {
	category := flag.String("category", "", "category the words belong to")
	file := flag.String("file", "", "word list file, one word per line")
	flag.Parse()

	if *category == "" || *file == "" {
		log.Fatal("both -category and -file are required")
	}

	words, err := readWords(*file)
	if err != nil {
		log.Fatalf("Failed to read word list: %v", err)
	}
	if len(words) == 0 {
		log.Fatalf("No words found in %s", *file)
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	dictRepo := repository.NewDictionaryRepo(db)

	if err := dictRepo.AddWords(ctx, *category, words); err != nil {
		log.Fatalf("Failed to seed words: %v", err)
	}

	log.Printf("Seeded %d words into category %q", len(words), *category)
}

func readWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if word := scanner.Text(); word != "" {
			words = append(words, word)
		}
	}
	return words, scanner.Err()
}
