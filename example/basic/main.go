package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/vaultgraph"
	"github.com/siherrmann/vaultgraph/core/generation"
	"github.com/siherrmann/vaultgraph/core/pipeline"
	"github.com/siherrmann/vaultgraph/helper"
	"github.com/siherrmann/vaultgraph/model"
	"golang.org/x/time/rate"
)

var sampleFiles = []struct {
	name       string
	categories []string
	text       string
}{
	{
		name:       "graph-databases.md",
		categories: []string{"Databases", "Graphs"},
		text: `Graph databases store data as nodes and edges.
They are designed for queries over complex relationships between entities.`,
	},
	{
		name:       "pgvector-notes.md",
		categories: []string{"Databases", "Search"},
		text: `pgvector adds a vector column type to PostgreSQL.
Cosine distance makes semantic similarity search possible next to regular SQL.`,
	},
	{
		name:       "sourdough.txt",
		categories: []string{"Cooking"},
		text:       `Feed the starter, mix flour and water, rest the dough overnight and bake at 250 degrees.`,
	},
}

func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(ctx)

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	v, err := vaultgraph.NewVaultGraph(dbConfig, pipeline.DefaultModelDim)
	if err != nil {
		log.Fatalf("Failed to create vaultgraph: %v", err)
	}
	defer v.Close()

	if err := v.UseDefaultEmbedder(); err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}

	// Chat needs an API key, search works without one
	if config, err := generation.NewOpenAIConfigFromEnv(); err == nil && config.APIKey != "" {
		generator, err := generation.NewOpenAIGenerator(config)
		if err != nil {
			log.Fatalf("Failed to create generator: %v", err)
		}
		v.SetGenerator(generation.NewRateLimited(generator, rate.NewLimiter(rate.Every(2*time.Second), 1)))
	}

	fmt.Println("Ingesting files...")
	for _, f := range sampleFiles {
		text := f.text
		doc := &model.Document{
			Name:       f.name,
			Text:       &text,
			Categories: f.categories,
			Metadata:   model.Metadata{"source": "basic_example"},
		}
		if err := v.IngestDocument(ctx, doc); err != nil {
			log.Fatalf("Failed to ingest %s: %v", f.name, err)
		}
		fmt.Printf("Stored %s (%s)\n", doc.Name, doc.RID)
	}

	search, err := v.Search(ctx, "vector similarity in postgres")
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}
	fmt.Printf("\n%s\n", search.Text)

	answer, err := v.Ask(ctx, "How can I search by meaning in PostgreSQL?")
	if err != nil {
		fmt.Printf("\nSkipping chat: %v\n", err)
	} else {
		fmt.Printf("\n%s\n", answer.Text)
		for _, c := range answer.Citations {
			fmt.Printf("  cited: %s (%.0f%%)\n", c.Document.Name, c.Score*100)
		}
	}

	handle, err := v.BuildGraph(ctx)
	if err != nil {
		log.Fatalf("Failed to start graph build: %v", err)
	}
	result, err := handle.Wait(ctx)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	fmt.Printf("\nFound %d semantic edges:\n", len(result.Edges))
	for _, edge := range result.Edges {
		fmt.Printf("  %s <-> %s (%.2f) %s\n", edge.Source, edge.Target, edge.Similarity, edge.Reason)
	}

	fmt.Println("\nBasic example completed successfully!")
}
